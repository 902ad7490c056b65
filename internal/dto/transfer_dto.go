package dto

import (
	"encoding/json"
	"time"

	"sheetroom-be/internal/entity"

	"github.com/google/uuid"
)

// TransferCellData is one cell of the transfer wire payload, addressed
// relative to the selection's top-left corner. Formula and style travel
// with the value so the rectangle lands intact in the target room.
type TransferCellData struct {
	RelativeRow int             `json:"relativeRow" validate:"min=0"`
	RelativeCol int             `json:"relativeCol" validate:"min=0"`
	Value       string          `json:"value"`
	Formula     *string         `json:"formula"`
	Style       json.RawMessage `json:"style"`
}

// TransferData mirrors the client's selection extract: the declared
// rectangle dimensions plus the cells, empty ones included.
type TransferData struct {
	RowCount int                `json:"rowCount" validate:"min=0"`
	ColCount int                `json:"colCount" validate:"min=0"`
	Cells    []TransferCellData `json:"cells" validate:"required,min=1,dive"`
}

// TransferRequest carries a selection rectangle from one room to another.
type TransferRequest struct {
	SourceRoom string       `json:"sourceRoom" validate:"required"`
	TargetRoom string       `json:"targetRoom" validate:"required"`
	Data       TransferData `json:"data" validate:"required"`
	UserId     string       `json:"userId" validate:"required"`
}

// TransferResponse acknowledges the enqueue. Success says the payload was
// queued, nothing more: whether the target room ever polls is not this
// request's problem.
type TransferResponse struct {
	Success          bool      `json:"success"`
	TargetRoom       string    `json:"targetRoom"`
	TransferredCells int       `json:"transferredCells"`
	TransferId       uuid.UUID `json:"transferId"`
}

type PendingTransfersResponse struct {
	Transfers []PendingTransfer `json:"transfers"`
}

type PendingTransfer struct {
	Id         uuid.UUID             `json:"id"`
	SourceRoom string                `json:"sourceRoom"`
	TargetRoom string                `json:"targetRoom"`
	Cells      []entity.TransferCell `json:"cells"`
	RowCount   int                   `json:"rowCount"`
	ColCount   int                   `json:"colCount"`
	UserId     string                `json:"userId"`
	EnqueuedAt time.Time             `json:"enqueuedAt"`
}
