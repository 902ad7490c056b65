package model

import (
	"time"

	"github.com/google/uuid"
)

type Workbook struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:varchar(255);not null"`
	RoomId    string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Workbook) TableName() string {
	return "workbooks"
}

type Worksheet struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	WorkbookId uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_worksheets_order"`
	Name       string    `gorm:"type:varchar(255);not null"`
	SheetIndex int       `gorm:"not null;uniqueIndex:idx_worksheets_order"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`

	Workbook *Workbook `gorm:"foreignKey:WorkbookId;constraint:OnDelete:CASCADE"`
}

func (Worksheet) TableName() string {
	return "worksheets"
}

type WorkbookPermission struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	WorkbookId  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_permissions_user"`
	UserId      string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_permissions_user"`
	AccessLevel string    `gorm:"type:varchar(16);not null"`
	GrantedBy   string    `gorm:"type:varchar(255)"`
	GrantedAt   time.Time `gorm:"autoCreateTime"`

	Workbook *Workbook `gorm:"foreignKey:WorkbookId;constraint:OnDelete:CASCADE"`
}

func (WorkbookPermission) TableName() string {
	return "workbook_permissions"
}
