package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Cell rows are unique per (room_id, row_index, col_index), not per
// worksheet. A worksheet shown in two rooms keeps two independent cell sets,
// and room_id "" is the partition for writes made before a room is bound.
type Cell struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	WorksheetId uuid.UUID      `gorm:"type:uuid;not null;index"`
	RoomId      string         `gorm:"type:varchar(255);not null;default:'';uniqueIndex:idx_cells_room_pos"`
	RowIndex    int            `gorm:"not null;uniqueIndex:idx_cells_room_pos"`
	ColIndex    int            `gorm:"not null;uniqueIndex:idx_cells_room_pos"`
	Value       string         `gorm:"type:text"`
	Formula     *string        `gorm:"type:text"`
	Style       datatypes.JSON `gorm:"type:json"`
	UpdatedBy   string         `gorm:"type:varchar(255)"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`

	Worksheet *Worksheet `gorm:"foreignKey:WorksheetId;constraint:OnDelete:CASCADE"`
}

func (Cell) TableName() string {
	return "cells"
}

type ChangeHistory struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	WorksheetId uuid.UUID `gorm:"type:uuid;not null;index"`
	RowIndex    int       `gorm:"not null"`
	ColIndex    int       `gorm:"not null"`
	OldValue    *string   `gorm:"type:text"`
	NewValue    string    `gorm:"type:text"`
	UserId      string    `gorm:"type:varchar(255)"`
	ChangedAt   time.Time `gorm:"autoCreateTime;index"`

	Worksheet *Worksheet `gorm:"foreignKey:WorksheetId;constraint:OnDelete:CASCADE"`
}

func (ChangeHistory) TableName() string {
	return "change_history"
}
