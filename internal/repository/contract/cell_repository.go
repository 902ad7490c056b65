package contract

import (
	"context"

	"sheetroom-be/internal/entity"
	"sheetroom-be/internal/repository/specification"

	"github.com/google/uuid"
)

// CellRepository is the durable side of the sync protocol. Upserts conflict
// on (room_id, row_index, col_index); batch upserts are applied as a single
// statement and are all-or-nothing.
type CellRepository interface {
	// GetCells returns a worksheet's cells ordered by (row_index, col_index)
	// ascending. A nil roomID returns every partition; a non-nil one narrows
	// to that partition (empty string = the unbound bucket).
	GetCells(ctx context.Context, worksheetID uuid.UUID, roomID *string) ([]*entity.Cell, error)
	Upsert(ctx context.Context, cell *entity.Cell) error
	UpsertBatch(ctx context.Context, cells []*entity.Cell) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Cell, error)
	// Delete removes the cell rows at the coordinate and reports how many
	// went away. Hard delete, no tombstones.
	Delete(ctx context.Context, worksheetID uuid.UUID, row, col int) (int64, error)
}

type ChangeHistoryRepository interface {
	Append(ctx context.Context, change *entity.ChangeEntry) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChangeEntry, error)
}
