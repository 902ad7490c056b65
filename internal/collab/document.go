package collab

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"sheetroom-be/internal/placement"
)

// CellRecord is one replicated cell value. UpdatedAt is informative ordering
// input, never an authority: conflict resolution is last-write-wins with a
// deterministic (UpdatedAt, UpdatedBy) tie-break.
type CellRecord struct {
	Value     string          `json:"value"`
	Formula   *string         `json:"formula"`
	Style     json.RawMessage `json:"style"`
	UpdatedBy string          `json:"updatedBy"`
	UpdatedAt int64           `json:"updatedAt"`
}

// CellKey renders a coordinate as the wire key "row,col".
func CellKey(row, col int) string {
	return fmt.Sprintf("%d,%d", row, col)
}

// ParseCellKey parses "row,col". Negative coordinates are rejected.
func ParseCellKey(key string) (row, col int, err error) {
	parts := strings.SplitN(key, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid cell key %q", key)
	}
	row, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid cell key %q", key)
	}
	col, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid cell key %q", key)
	}
	if row < 0 || col < 0 {
		return 0, 0, fmt.Errorf("negative coordinate in cell key %q", key)
	}
	return row, col, nil
}

func sameContent(a, b CellRecord) bool {
	if a.Value != b.Value {
		return false
	}
	if (a.Formula == nil) != (b.Formula == nil) {
		return false
	}
	if a.Formula != nil && *a.Formula != *b.Formula {
		return false
	}
	return bytes.Equal(a.Style, b.Style)
}

// wins reports whether the incoming record beats the current one under the
// LWW comparator. Ties on timestamp fall back to the writer id so two
// replicas comparing the same pair always agree.
func wins(incoming, current CellRecord) bool {
	if incoming.UpdatedAt != current.UpdatedAt {
		return incoming.UpdatedAt > current.UpdatedAt
	}
	return incoming.UpdatedBy >= current.UpdatedBy
}

// Document is a room's shared cell map. All access goes through the mutex:
// the engine flush, the hub broadcast path, and the transfer poll each run
// on their own goroutine.
type Document struct {
	mu    sync.RWMutex
	cells map[string]CellRecord
}

func NewDocument() *Document {
	return &Document{cells: make(map[string]CellRecord)}
}

// Set applies one mutation and reports whether the document changed.
// Identical content is a no-op regardless of timestamps, so re-applying a
// record that is already present never produces a broadcast. Older writes
// under the LWW comparator are dropped.
func (d *Document) Set(key string, rec CellRecord) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setLocked(key, rec)
}

func (d *Document) setLocked(key string, rec CellRecord) bool {
	current, exists := d.cells[key]
	if exists {
		if sameContent(current, rec) {
			return false
		}
		if !wins(rec, current) {
			return false
		}
	}
	d.cells[key] = rec
	return true
}

// Apply folds a snapshot into the document and returns only the keys that
// actually changed. Applying a snapshot the document already matches
// returns nothing.
func (d *Document) Apply(snapshot map[string]CellRecord) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var changed []string
	for key, rec := range snapshot {
		if d.setLocked(key, rec) {
			changed = append(changed, key)
		}
	}
	return changed
}

func (d *Document) Get(key string) (CellRecord, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	rec, ok := d.cells[key]
	return rec, ok
}

func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.cells)
}

// Snapshot copies the current cell map.
func (d *Document) Snapshot() map[string]CellRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]CellRecord, len(d.cells))
	for k, v := range d.cells {
		out[k] = v
	}
	return out
}

// Occupied returns the coordinate set for the placement resolver. Keys that
// fail to parse are skipped.
func (d *Document) Occupied() map[placement.Key]struct{} {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[placement.Key]struct{}, len(d.cells))
	for k := range d.cells {
		row, col, err := ParseCellKey(k)
		if err != nil {
			continue
		}
		out[placement.Key{Row: row, Col: col}] = struct{}{}
	}
	return out
}
