package collab

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCellKeyRoundTrip(t *testing.T) {
	key := CellKey(12, 7)
	assert.Equal(t, "12,7", key)

	row, col, err := ParseCellKey(key)
	require.NoError(t, err)
	assert.Equal(t, 12, row)
	assert.Equal(t, 7, col)
}

func TestParseCellKeyRejectsMalformed(t *testing.T) {
	for _, key := range []string{"", "5", "a,b", "1,2,3extra,", "-1,0", "0,-4"} {
		_, _, err := ParseCellKey(key)
		assert.Error(t, err, "key %q", key)
	}
}

func TestSetNewerWriteWins(t *testing.T) {
	doc := NewDocument()

	changed := doc.Set("0,0", CellRecord{Value: "first", UpdatedBy: "alice", UpdatedAt: 100})
	assert.True(t, changed)

	changed = doc.Set("0,0", CellRecord{Value: "second", UpdatedBy: "bob", UpdatedAt: 200})
	assert.True(t, changed)

	rec, ok := doc.Get("0,0")
	require.True(t, ok)
	assert.Equal(t, "second", rec.Value)
}

func TestSetOlderWriteDropped(t *testing.T) {
	doc := NewDocument()
	doc.Set("0,0", CellRecord{Value: "current", UpdatedBy: "alice", UpdatedAt: 200})

	changed := doc.Set("0,0", CellRecord{Value: "stale", UpdatedBy: "bob", UpdatedAt: 100})
	assert.False(t, changed)

	rec, _ := doc.Get("0,0")
	assert.Equal(t, "current", rec.Value)
}

func TestSetTimestampTieBreaksOnWriter(t *testing.T) {
	doc := NewDocument()
	doc.Set("0,0", CellRecord{Value: "from-bob", UpdatedBy: "bob", UpdatedAt: 100})

	// "alice" < "bob", same timestamp: incoming loses.
	changed := doc.Set("0,0", CellRecord{Value: "from-alice", UpdatedBy: "alice", UpdatedAt: 100})
	assert.False(t, changed)

	// "carol" > "bob": incoming wins.
	changed = doc.Set("0,0", CellRecord{Value: "from-carol", UpdatedBy: "carol", UpdatedAt: 100})
	assert.True(t, changed)

	rec, _ := doc.Get("0,0")
	assert.Equal(t, "from-carol", rec.Value)
}

func TestSetIdenticalContentIsNoOp(t *testing.T) {
	doc := NewDocument()
	rec := CellRecord{
		Value:     "42",
		Formula:   strPtr("=SUM(A1:A3)"),
		Style:     json.RawMessage(`{"bold":true}`),
		UpdatedBy: "alice",
		UpdatedAt: 100,
	}
	assert.True(t, doc.Set("3,4", rec))

	// Same content with a later timestamp still must not register as a
	// change, otherwise an echoed broadcast would bounce forever.
	echo := rec
	echo.UpdatedAt = 500
	echo.UpdatedBy = "zed"
	assert.False(t, doc.Set("3,4", echo))
}

func TestApplyReturnsOnlyChangedKeys(t *testing.T) {
	doc := NewDocument()
	doc.Set("0,0", CellRecord{Value: "kept", UpdatedBy: "a", UpdatedAt: 300})
	doc.Set("0,1", CellRecord{Value: "old", UpdatedBy: "a", UpdatedAt: 100})

	changed := doc.Apply(map[string]CellRecord{
		"0,0": {Value: "stale", UpdatedBy: "b", UpdatedAt: 100},
		"0,1": {Value: "new", UpdatedBy: "b", UpdatedAt: 200},
		"1,0": {Value: "fresh", UpdatedBy: "b", UpdatedAt: 200},
	})
	assert.ElementsMatch(t, []string{"0,1", "1,0"}, changed)
}

func TestApplyConverges(t *testing.T) {
	doc := NewDocument()
	snapshot := map[string]CellRecord{
		"0,0": {Value: "a", UpdatedBy: "u1", UpdatedAt: 100},
		"2,3": {Value: "b", UpdatedBy: "u2", UpdatedAt: 150},
	}

	first := doc.Apply(snapshot)
	assert.Len(t, first, 2)

	// Re-applying the same snapshot produces zero changes.
	second := doc.Apply(snapshot)
	assert.Empty(t, second)
	assert.Equal(t, 2, doc.Len())
}

func TestSnapshotIsACopy(t *testing.T) {
	doc := NewDocument()
	doc.Set("0,0", CellRecord{Value: "x", UpdatedBy: "a", UpdatedAt: 1})

	snap := doc.Snapshot()
	snap["0,0"] = CellRecord{Value: "mutated"}
	snap["9,9"] = CellRecord{Value: "extra"}

	rec, ok := doc.Get("0,0")
	require.True(t, ok)
	assert.Equal(t, "x", rec.Value)
	_, ok = doc.Get("9,9")
	assert.False(t, ok)
}

func TestOccupiedSkipsUnparseableKeys(t *testing.T) {
	doc := NewDocument()
	doc.Set("1,2", CellRecord{Value: "x", UpdatedBy: "a", UpdatedAt: 1})
	doc.Set("4,0", CellRecord{Value: "y", UpdatedBy: "a", UpdatedAt: 1})

	occ := doc.Occupied()
	assert.Len(t, occ, 2)
}
