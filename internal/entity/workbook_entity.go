package entity

import (
	"time"

	"github.com/google/uuid"
)

// Workbook owns a set of worksheets and exactly one collab room. RoomId is
// assigned at creation and never changes afterwards.
type Workbook struct {
	Id        uuid.UUID
	Name      string
	RoomId    string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

type Worksheet struct {
	Id         uuid.UUID
	WorkbookId uuid.UUID
	Name       string
	SheetIndex int
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// AccessLevel values for workbook permissions.
const (
	AccessFull = "full"
	AccessRead = "read"
	AccessNone = "none"
)

type WorkbookPermission struct {
	Id          uuid.UUID
	WorkbookId  uuid.UUID
	UserId      string
	AccessLevel string
	GrantedBy   string
	GrantedAt   time.Time
}
