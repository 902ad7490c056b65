package memory

import (
	"sync"

	"sheetroom-be/internal/entity"
	"sheetroom-be/internal/repository/contract"
)

// TransferQueue keeps pending transfers in process memory. Multiple HTTP
// handlers and room engines touch the same mailbox concurrently, so the
// mutex is required: the only operations are append and drain-all, and
// drain-all must observe either none or all of a concurrent append.
//
// Pending payloads do not survive a restart, and the sender is never told
// whether the target room ever polled.
type TransferQueue struct {
	mu      sync.Mutex
	pending map[string][]*entity.TransferPayload
}

func NewTransferQueue() contract.TransferQueue {
	return &TransferQueue{
		pending: make(map[string][]*entity.TransferPayload),
	}
}

func (q *TransferQueue) Enqueue(targetRoom string, payload *entity.TransferPayload) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending[targetRoom] = append(q.pending[targetRoom], payload)
}

// Drain returns everything queued for the room and clears the mailbox in the
// same step. Draining an empty mailbox returns nil, not an error.
func (q *TransferQueue) Drain(room string) []*entity.TransferPayload {
	q.mu.Lock()
	defer q.mu.Unlock()
	payloads := q.pending[room]
	delete(q.pending, room)
	return payloads
}

func (q *TransferQueue) Depth(room string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending[room])
}
