package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "TRANSFER_ENQUEUED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Domain event types published to the bus.
const (
	TypeWorkbookCreated  = "WORKBOOK_CREATED"
	TypeTransferEnqueued = "TRANSFER_ENQUEUED"
	TypeTransferApplied  = "TRANSFER_APPLIED"
)

func WorkbookCreated(workbookID, roomID, name string) Event {
	return BaseEvent{
		Type: TypeWorkbookCreated,
		Data: map[string]interface{}{
			"workbook_id": workbookID,
			"room_id":     roomID,
			"name":        name,
		},
		OccurredAt: time.Now(),
	}
}

func TransferEnqueued(transferID, sourceRoom, targetRoom, userID string, cellCount int) Event {
	return BaseEvent{
		Type: TypeTransferEnqueued,
		Data: map[string]interface{}{
			"transfer_id": transferID,
			"source_room": sourceRoom,
			"target_room": targetRoom,
			"user_id":     userID,
			"cell_count":  cellCount,
		},
		OccurredAt: time.Now(),
	}
}

func TransferApplied(transferID, targetRoom string, row, col, cellCount int) Event {
	return BaseEvent{
		Type: TypeTransferApplied,
		Data: map[string]interface{}{
			"transfer_id": transferID,
			"target_room": targetRoom,
			"placed_row":  row,
			"placed_col":  col,
			"cell_count":  cellCount,
		},
		OccurredAt: time.Now(),
	}
}
