package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Cell is one stored grid coordinate. Identity is (RoomId, RowIndex,
// ColIndex); an empty RoomId is its own partition, shared by writes that
// arrive before any room is bound. There is no versioning: writes overwrite
// in place and deletes remove the row.
type Cell struct {
	Id          uuid.UUID
	WorksheetId uuid.UUID
	RoomId      string
	RowIndex    int
	ColIndex    int
	Value       string
	Formula     *string
	Style       json.RawMessage
	UpdatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ChangeEntry is one row of the append-only change history log.
type ChangeEntry struct {
	Id          uuid.UUID
	WorksheetId uuid.UUID
	RowIndex    int
	ColIndex    int
	OldValue    *string
	NewValue    string
	UserId      string
	ChangedAt   time.Time
}

// TransferCell is one cell of a queued rectangle, positioned relative to the
// rectangle's top-left corner. Empty cells are carried too so the shape
// survives the trip.
type TransferCell struct {
	RelativeRow int             `json:"relativeRow"`
	RelativeCol int             `json:"relativeCol"`
	Value       string          `json:"value"`
	Formula     *string         `json:"formula"`
	Style       json.RawMessage `json:"style"`
}

// TransferPayload is a rectangular block of cells addressed from one room to
// another, owned by the transfer queue until a poll from the target room
// drains it.
type TransferPayload struct {
	Id         uuid.UUID      `json:"id"`
	SourceRoom string         `json:"sourceRoom"`
	TargetRoom string         `json:"targetRoom"`
	Cells      []TransferCell `json:"cells"`
	RowCount   int            `json:"rowCount"`
	ColCount   int            `json:"colCount"`
	UserId     string         `json:"userId"`
	EnqueuedAt time.Time      `json:"enqueuedAt"`
}
