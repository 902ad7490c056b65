package memory

import (
	"sync"
	"testing"
	"time"

	"sheetroom-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func payload(target string) *entity.TransferPayload {
	return &entity.TransferPayload{
		Id:         uuid.New(),
		SourceRoom: "workbook:1",
		TargetRoom: target,
		Cells:      []entity.TransferCell{{RelativeRow: 0, RelativeCol: 0, Value: "x"}},
		RowCount:   1,
		ColCount:   1,
		UserId:     "user-1",
		EnqueuedAt: time.Now(),
	}
}

func TestDrainIsAtMostOnce(t *testing.T) {
	q := NewTransferQueue()
	p := payload("workbook:2")

	q.Enqueue("workbook:2", p)
	assert.Equal(t, 1, q.Depth("workbook:2"))

	got := q.Drain("workbook:2")
	assert.Len(t, got, 1)
	assert.Equal(t, p.Id, got[0].Id)

	// Second drain before the next enqueue returns empty, not an error.
	assert.Empty(t, q.Drain("workbook:2"))
	assert.Equal(t, 0, q.Depth("workbook:2"))
}

func TestDrainPreservesEnqueueOrder(t *testing.T) {
	q := NewTransferQueue()
	first := payload("workbook:9")
	second := payload("workbook:9")

	q.Enqueue("workbook:9", first)
	q.Enqueue("workbook:9", second)

	got := q.Drain("workbook:9")
	assert.Len(t, got, 2)
	assert.Equal(t, first.Id, got[0].Id)
	assert.Equal(t, second.Id, got[1].Id)
}

func TestMailboxesAreIndependent(t *testing.T) {
	q := NewTransferQueue()
	q.Enqueue("workbook:a", payload("workbook:a"))
	q.Enqueue("workbook:b", payload("workbook:b"))

	assert.Len(t, q.Drain("workbook:a"), 1)
	assert.Equal(t, 1, q.Depth("workbook:b"))
}

func TestConcurrentEnqueueAndDrainLosesNothing(t *testing.T) {
	q := NewTransferQueue()
	const senders = 8
	const perSender = 50

	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perSender; j++ {
				q.Enqueue("workbook:busy", payload("workbook:busy"))
			}
		}()
	}

	seen := 0
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for {
		seen += len(q.Drain("workbook:busy"))
		select {
		case <-done:
			seen += len(q.Drain("workbook:busy"))
			assert.Equal(t, senders*perSender, seen)
			return
		default:
		}
	}
}
