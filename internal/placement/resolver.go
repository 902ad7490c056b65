// Package placement finds free rectangles in a room's occupied grid, used
// when a queued transfer is applied so incoming cells never overwrite what
// the room already has.
package placement

// Key is an occupied grid coordinate.
type Key struct {
	Row int
	Col int
}

// Point is the top-left corner chosen for a placed rectangle.
type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Default search bounds. The scan is brute force, worst case
// O(maxRows * maxCols * rowCount * colCount); that is only acceptable
// because these stay small constants. Raising them meaningfully needs a
// better algorithm, not bigger numbers.
const (
	DefaultMaxRows = 1000
	DefaultMaxCols = 100
)

// Resolver scans row-major from (0,0) for the first rectangle of the
// requested size that intersects no occupied key.
type Resolver struct {
	maxRows int
	maxCols int
}

func NewResolver(maxRows, maxCols int) *Resolver {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	if maxCols <= 0 {
		maxCols = DefaultMaxCols
	}
	return &Resolver{maxRows: maxRows, maxCols: maxCols}
}

// FindSpace is total: when nothing fits inside the search bounds it places
// the rectangle below all known content at column 0. Near the row bound that
// fallback can land outside sane spreadsheet limits; callers accept that.
//
// The decision is made against one occupancy snapshot. Two resolvers racing
// against the same room can pick overlapping spots; the room engine
// serializes transfer application to avoid that.
func (r *Resolver) FindSpace(occupied map[Key]struct{}, rowCount, colCount int) Point {
	if rowCount < 1 {
		rowCount = 1
	}
	if colCount < 1 {
		colCount = 1
	}

	for startRow := 0; startRow < r.maxRows; startRow++ {
		for startCol := 0; startCol < r.maxCols; startCol++ {
			if r.fits(occupied, startRow, startCol, rowCount, colCount) {
				return Point{Row: startRow, Col: startCol}
			}
		}
	}

	maxRow := -1
	for k := range occupied {
		if k.Row > maxRow {
			maxRow = k.Row
		}
	}
	return Point{Row: maxRow + 1, Col: 0}
}

func (r *Resolver) fits(occupied map[Key]struct{}, startRow, startCol, rowCount, colCount int) bool {
	for dr := 0; dr < rowCount; dr++ {
		for dc := 0; dc < colCount; dc++ {
			if _, used := occupied[Key{Row: startRow + dr, Col: startCol + dc}]; used {
				return false
			}
		}
	}
	return true
}
