package specification

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByID filters by ID
type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// ByWorkbookID filters worksheets and permissions by their owning workbook.
type ByWorkbookID struct {
	WorkbookID uuid.UUID
}

func (s ByWorkbookID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("workbook_id = ?", s.WorkbookID)
}

// ByWorksheetID filters cells and history rows by worksheet.
type ByWorksheetID struct {
	WorksheetID uuid.UUID
}

func (s ByWorksheetID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("worksheet_id = ?", s.WorksheetID)
}

// ByRoomID filters cells by their room partition. An empty RoomID selects the
// unbound partition, which is a real bucket, not "no filter".
type ByRoomID struct {
	RoomID string
}

func (s ByRoomID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("room_id = ?", s.RoomID)
}

// ByPosition filters cells by grid coordinate.
type ByPosition struct {
	Row int
	Col int
}

func (s ByPosition) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("row_index = ? AND col_index = ?", s.Row, s.Col)
}

// ByRoomPattern filters workbooks by room id.
type ByRoomPattern struct {
	RoomID string
}

func (s ByRoomPattern) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("room_id = ?", s.RoomID)
}

// OrderBy applies ordering
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}

// Limit caps the result set.
type Limit struct {
	N int
}

func (s Limit) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.N)
}
