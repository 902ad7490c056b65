package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type UpsertCellRequest struct {
	WorksheetId uuid.UUID
	RowIndex    int             `json:"rowIndex" validate:"gte=0"`
	ColIndex    int             `json:"colIndex" validate:"gte=0"`
	Value       string          `json:"value"`
	Formula     *string         `json:"formula"`
	Style       json.RawMessage `json:"style"`
	RoomId      string          `json:"roomId"`
	UserId      string          `json:"userId" validate:"required"`
}

type UpsertCellsRequest struct {
	WorksheetId uuid.UUID
	Cells       []UpsertCellItem `json:"cells" validate:"required,min=1,dive"`
	RoomId      string           `json:"roomId"`
	UserId      string           `json:"userId" validate:"required"`
}

type UpsertCellItem struct {
	RowIndex int             `json:"rowIndex" validate:"gte=0"`
	ColIndex int             `json:"colIndex" validate:"gte=0"`
	Value    string          `json:"value"`
	Formula  *string         `json:"formula"`
	Style    json.RawMessage `json:"style"`
}

type CellResponse struct {
	RowIndex  int             `json:"rowIndex"`
	ColIndex  int             `json:"colIndex"`
	Value     string          `json:"value"`
	Formula   *string         `json:"formula"`
	Style     json.RawMessage `json:"style"`
	RoomId    string          `json:"roomId"`
	UpdatedBy string          `json:"updatedBy"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type DeleteCellResponse struct {
	Deleted int64 `json:"deleted"`
}

type ChangeHistoryResponse struct {
	RowIndex  int       `json:"rowIndex"`
	ColIndex  int       `json:"colIndex"`
	OldValue  *string   `json:"oldValue"`
	NewValue  string    `json:"newValue"`
	UserId    string    `json:"userId"`
	ChangedAt time.Time `json:"changedAt"`
}

// CellChangeMessage travels over the in-process change bus from the sync
// engine to the history consumer.
type CellChangeMessage struct {
	WorksheetId uuid.UUID `json:"worksheet_id"`
	RowIndex    int       `json:"row_index"`
	ColIndex    int       `json:"col_index"`
	OldValue    *string   `json:"old_value"`
	NewValue    string    `json:"new_value"`
	UserId      string    `json:"user_id"`
}
