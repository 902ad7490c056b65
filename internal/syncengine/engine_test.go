package syncengine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"sheetroom-be/internal/collab"
	"sheetroom-be/internal/entity"
	"sheetroom-be/internal/pkg/logger"
	"sheetroom-be/internal/placement"
	"sheetroom-be/internal/repository/contract"
	"sheetroom-be/internal/repository/memory"
	"sheetroom-be/internal/repository/specification"
	"sheetroom-be/internal/repository/unitofwork"
	"sheetroom-be/pkg/rooms"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCellRepo is an in-memory CellRepository keyed the same way the real
// table is: (room_id, row_index, col_index).
type fakeCellRepo struct {
	mu      sync.Mutex
	rows    map[string]*entity.Cell
	seeded  []*entity.Cell
	failKey string

	upserts int
	batches int
}

func newFakeCellRepo() *fakeCellRepo {
	return &fakeCellRepo{rows: make(map[string]*entity.Cell)}
}

func cellKey(roomId string, row, col int) string {
	return fmt.Sprintf("%s|%d,%d", roomId, row, col)
}

func (f *fakeCellRepo) GetCells(ctx context.Context, worksheetID uuid.UUID, roomID *string) ([]*entity.Cell, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seeded, nil
}

func (f *fakeCellRepo) Upsert(ctx context.Context, cell *entity.Cell) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := cellKey(cell.RoomId, cell.RowIndex, cell.ColIndex)
	if key == f.failKey {
		return fmt.Errorf("store unavailable")
	}
	f.rows[key] = cell
	f.upserts++
	return nil
}

func (f *fakeCellRepo) UpsertBatch(ctx context.Context, cells []*entity.Cell) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	// All-or-nothing, same as the single-statement implementation.
	for _, cell := range cells {
		if cellKey(cell.RoomId, cell.RowIndex, cell.ColIndex) == f.failKey {
			return fmt.Errorf("store unavailable")
		}
	}
	for _, cell := range cells {
		f.rows[cellKey(cell.RoomId, cell.RowIndex, cell.ColIndex)] = cell
	}
	f.batches++
	return nil
}

func (f *fakeCellRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Cell, error) {
	return nil, nil
}

func (f *fakeCellRepo) Delete(ctx context.Context, worksheetID uuid.UUID, row, col int) (int64, error) {
	return 0, nil
}

func (f *fakeCellRepo) get(roomId string, row, col int) *entity.Cell {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[cellKey(roomId, row, col)]
}

// fakeWorkbookRepo has no rows: every lookup is a miss, reported the way
// the GORM implementations do it, nil without an error.
type fakeWorkbookRepo struct{}

func (f *fakeWorkbookRepo) Create(ctx context.Context, workbook *entity.Workbook) error { return nil }
func (f *fakeWorkbookRepo) Update(ctx context.Context, workbook *entity.Workbook) error { return nil }
func (f *fakeWorkbookRepo) Delete(ctx context.Context, id uuid.UUID) error              { return nil }
func (f *fakeWorkbookRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Workbook, error) {
	return nil, nil
}
func (f *fakeWorkbookRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Workbook, error) {
	return nil, nil
}
func (f *fakeWorkbookRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

type fakeUow struct {
	cells *fakeCellRepo
}

func (f *fakeUow) Begin(ctx context.Context) error { return nil }
func (f *fakeUow) Commit() error                   { return nil }
func (f *fakeUow) Rollback() error                 { return nil }
func (f *fakeUow) WorkbookRepository() contract.WorkbookRepository {
	return &fakeWorkbookRepo{}
}
func (f *fakeUow) WorksheetRepository() contract.WorksheetRepository {
	return nil
}
func (f *fakeUow) CellRepository() contract.CellRepository {
	return f.cells
}
func (f *fakeUow) ChangeHistoryRepository() contract.ChangeHistoryRepository {
	return nil
}
func (f *fakeUow) PermissionRepository() contract.PermissionRepository {
	return nil
}

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type testHarness struct {
	engine *Engine
	doc    *collab.Document
	cells  *fakeCellRepo
	queue  contract.TransferQueue
	frames [][]byte
	mu     sync.Mutex
	roomID string
}

func (h *testHarness) frameCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.frames)
}

func newHarness(t *testing.T, resolver *placement.Resolver) *testHarness {
	t.Helper()

	worksheetId := uuid.New()
	workbookId := uuid.New()
	roomID := rooms.WorksheetRoomID(workbookId.String(), worksheetId.String())

	h := &testHarness{
		doc:    collab.NewDocument(),
		cells:  newFakeCellRepo(),
		queue:  memory.NewTransferQueue(),
		roomID: roomID,
	}
	if resolver == nil {
		resolver = placement.NewResolver(0, 0)
	}
	h.engine = New(Options{
		RoomID: roomID,
		Doc:    h.doc,
		Emit: func(data []byte) {
			h.mu.Lock()
			h.frames = append(h.frames, data)
			h.mu.Unlock()
		},
		UowFactory:       &fakeUowFactory{uow: &fakeUow{cells: h.cells}},
		Queue:            h.queue,
		Resolver:         resolver,
		FlushInterval:    time.Hour,
		TransferInterval: time.Hour,
		Logger:           logger.NewIsolatedLogger(t.TempDir() + "/engine.log"),
	})
	return h
}

func TestHydratePopulatesEmptyDocument(t *testing.T) {
	h := newHarness(t, nil)
	h.cells.seeded = []*entity.Cell{
		{RowIndex: 0, ColIndex: 0, Value: "a", UpdatedBy: "u1", UpdatedAt: time.UnixMilli(100)},
		{RowIndex: 3, ColIndex: 2, Value: "b", UpdatedBy: "u2", UpdatedAt: time.UnixMilli(200)},
	}

	require.NoError(t, h.engine.Hydrate(context.Background()))

	assert.Equal(t, 2, h.doc.Len())
	rec, ok := h.doc.Get("3,2")
	require.True(t, ok)
	assert.Equal(t, "b", rec.Value)
	assert.Equal(t, int64(200), rec.UpdatedAt)
}

func TestHydrateSkipsNonEmptyDocument(t *testing.T) {
	h := newHarness(t, nil)
	h.doc.Set("0,0", collab.CellRecord{Value: "live", UpdatedBy: "u1", UpdatedAt: 500})
	h.cells.seeded = []*entity.Cell{
		{RowIndex: 0, ColIndex: 0, Value: "stale", UpdatedBy: "u0", UpdatedAt: time.UnixMilli(100)},
	}

	require.NoError(t, h.engine.Hydrate(context.Background()))

	rec, _ := h.doc.Get("0,0")
	assert.Equal(t, "live", rec.Value)
}

func TestMutatePersistsAndBroadcasts(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.engine.Hydrate(context.Background()))

	err := h.engine.Mutate(context.Background(), "2,3", collab.CellRecord{
		Value: "42", UpdatedBy: "alice", UpdatedAt: 100,
	})
	require.NoError(t, err)

	stored := h.cells.get(h.roomID, 2, 3)
	require.NotNil(t, stored)
	assert.Equal(t, "42", stored.Value)
	assert.Equal(t, "alice", stored.UpdatedBy)

	require.Equal(t, 1, h.frameCount())
	var frame collab.UpdateFrame
	require.NoError(t, json.Unmarshal(h.frames[0], &frame))
	assert.Equal(t, collab.MessageTypeUpdate, frame.Type)
	assert.Equal(t, h.roomID, frame.Room)
	assert.Equal(t, "42", frame.Changes["2,3"].Value)
}

func TestMutateNoOpProducesNothing(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.engine.Hydrate(context.Background()))

	rec := collab.CellRecord{Value: "x", UpdatedBy: "alice", UpdatedAt: 100}
	require.NoError(t, h.engine.Mutate(context.Background(), "0,0", rec))
	require.NoError(t, h.engine.Mutate(context.Background(), "0,0", rec))

	// One broadcast, one upsert: the echo changed nothing.
	assert.Equal(t, 1, h.frameCount())
	assert.Equal(t, 1, h.cells.upserts)
}

func TestMutateFailureIsolatedPerCell(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.engine.Hydrate(context.Background()))
	h.cells.failKey = cellKey(h.roomID, 1, 1)

	require.NoError(t, h.engine.Mutate(context.Background(), "0,0", collab.CellRecord{Value: "a", UpdatedBy: "u", UpdatedAt: 100}))
	err := h.engine.Mutate(context.Background(), "1,1", collab.CellRecord{Value: "b", UpdatedBy: "u", UpdatedAt: 100})
	assert.Error(t, err)
	require.NoError(t, h.engine.Mutate(context.Background(), "2,2", collab.CellRecord{Value: "c", UpdatedBy: "u", UpdatedAt: 100}))

	// Neighbors committed despite the middle failure.
	assert.NotNil(t, h.cells.get(h.roomID, 0, 0))
	assert.Nil(t, h.cells.get(h.roomID, 1, 1))
	assert.NotNil(t, h.cells.get(h.roomID, 2, 2))

	// The document kept the failed write; the flush path retries it.
	rec, ok := h.doc.Get("1,1")
	require.True(t, ok)
	assert.Equal(t, "b", rec.Value)
}

func TestFlushWritesWholeDocument(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.engine.Hydrate(context.Background()))

	h.doc.Set("0,0", collab.CellRecord{Value: "a", UpdatedBy: "u", UpdatedAt: 100})
	h.doc.Set("5,7", collab.CellRecord{Value: "b", UpdatedBy: "u", UpdatedAt: 100})

	require.NoError(t, h.engine.Flush(context.Background()))

	assert.Equal(t, 1, h.cells.batches)
	assert.NotNil(t, h.cells.get(h.roomID, 0, 0))
	assert.NotNil(t, h.cells.get(h.roomID, 5, 7))
}

func TestTransferRoundTrip(t *testing.T) {
	// Bound the scan to 7 columns and block everything above and left of
	// (5,5) so the resolver has exactly one 2x2 spot to pick.
	h := newHarness(t, placement.NewResolver(100, 7))
	require.NoError(t, h.engine.Hydrate(context.Background()))

	for row := 0; row < 5; row++ {
		for col := 0; col < 7; col++ {
			h.doc.Set(collab.CellKey(row, col), collab.CellRecord{Value: "x", UpdatedBy: "u", UpdatedAt: 1})
		}
	}
	for row := 5; row < 7; row++ {
		for col := 0; col < 5; col++ {
			h.doc.Set(collab.CellKey(row, col), collab.CellRecord{Value: "x", UpdatedBy: "u", UpdatedAt: 1})
		}
	}

	formula := "=SUM(B1:B3)"
	style := json.RawMessage(`{"backColor":"#ffcc00"}`)
	h.queue.Enqueue(h.roomID, &entity.TransferPayload{
		Id:         uuid.New(),
		SourceRoom: "workbook:src",
		TargetRoom: h.roomID,
		Cells: []entity.TransferCell{
			{RelativeRow: 0, RelativeCol: 0, Value: "1", Formula: &formula, Style: style},
			{RelativeRow: 0, RelativeCol: 1, Value: "2"},
			{RelativeRow: 1, RelativeCol: 0, Value: "3"},
			{RelativeRow: 1, RelativeCol: 1, Value: "4"},
		},
		RowCount: 2,
		ColCount: 2,
		UserId:   "sender",
	})

	h.engine.applyPendingTransfers(context.Background())

	for key, want := range map[string]string{
		"5,5": "1", "5,6": "2", "6,5": "3", "6,6": "4",
	} {
		rec, ok := h.doc.Get(key)
		require.True(t, ok, "missing cell %s", key)
		assert.Equal(t, want, rec.Value, "cell %s", key)
	}

	// Formula and style arrived with the value at the placed corner.
	placed, ok := h.doc.Get("5,5")
	require.True(t, ok)
	require.NotNil(t, placed.Formula)
	assert.Equal(t, formula, *placed.Formula)
	assert.JSONEq(t, string(style), string(placed.Style))

	// Applied cells were persisted with the formula intact and the queue
	// is empty.
	persisted := h.cells.get(h.roomID, 5, 5)
	require.NotNil(t, persisted)
	require.NotNil(t, persisted.Formula)
	assert.Equal(t, formula, *persisted.Formula)
	assert.Equal(t, 0, h.queue.Depth(h.roomID))

	// A second poll finds nothing: at-most-once.
	framesBefore := h.frameCount()
	h.engine.applyPendingTransfers(context.Background())
	assert.Equal(t, framesBefore, h.frameCount())
}

func TestCloseRunsFinalFlush(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.engine.Hydrate(context.Background()))
	go h.engine.Run()

	require.NoError(t, h.engine.Mutate(context.Background(), "0,0", collab.CellRecord{Value: "last words", UpdatedBy: "u", UpdatedAt: 100}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.engine.Close(ctx))

	assert.Equal(t, 1, h.cells.batches)

	// Second close is a no-op.
	require.NoError(t, h.engine.Close(context.Background()))
	assert.Equal(t, 1, h.cells.batches)
}

func TestUnboundRoomStaysInMemory(t *testing.T) {
	// A workbook room with no workbook row behind it cannot bind a
	// worksheet: mutations stay in memory and nothing hits the store.
	h := newHarness(t, nil)
	h.engine.roomID = "workbook:orphan"

	require.NoError(t, h.engine.Hydrate(context.Background()))
	assert.False(t, h.engine.bound)

	require.NoError(t, h.engine.Mutate(context.Background(), "0,0", collab.CellRecord{Value: "a", UpdatedBy: "u", UpdatedAt: 100}))
	assert.Equal(t, 0, h.cells.upserts)

	// The mutation still replicated to peers.
	assert.Equal(t, 1, h.frameCount())

	require.NoError(t, h.engine.Flush(context.Background()))
	assert.Equal(t, 0, h.cells.batches)
}
