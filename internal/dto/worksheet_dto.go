package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateWorksheetRequest struct {
	WorkbookId uuid.UUID
	Name       string `json:"name" validate:"required"`
	// SheetIndex defines display order, unique within the workbook. A
	// negative value means "append after the current last sheet".
	SheetIndex int `json:"sheetIndex"`
}

type CreateWorksheetResponse struct {
	Id uuid.UUID `json:"id"`
}

type ShowWorksheetResponse struct {
	Id         uuid.UUID  `json:"id"`
	WorkbookId uuid.UUID  `json:"workbookId"`
	Name       string     `json:"name"`
	SheetIndex int        `json:"sheetIndex"`
	RoomId     string     `json:"roomId"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt"`
}
