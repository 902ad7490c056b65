package collab

const (
	// MessageTypeSet is a client mutation for one cell.
	MessageTypeSet = "set"

	// MessageTypeUpdate carries changed cells out to clients.
	MessageTypeUpdate = "update"

	// MessageTypeSnapshot carries the full document to a joining client.
	MessageTypeSnapshot = "snapshot"
)

// Message is the inbound client frame.
type Message struct {
	Type   string      `json:"type"`
	Key    string      `json:"key,omitempty"`
	Record *CellRecord `json:"record,omitempty"`
}

// UpdateFrame is the outbound frame for document changes.
type UpdateFrame struct {
	Type    string                `json:"type"`
	Room    string                `json:"room"`
	Changes map[string]CellRecord `json:"changes"`
}

// SnapshotFrame carries the full document to a joining client.
type SnapshotFrame struct {
	Type  string                `json:"type"`
	Room  string                `json:"room"`
	Cells map[string]CellRecord `json:"cells"`
}
