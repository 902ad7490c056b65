package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateWorkbookRequest struct {
	Name string `json:"name" validate:"required"`
	// RoomId is optional; when absent the room id is derived from the new
	// workbook id. Once assigned it never changes.
	RoomId string `json:"roomId,omitempty"`
}

type CreateWorkbookResponse struct {
	Id     uuid.UUID `json:"id"`
	RoomId string    `json:"roomId"`
}

type ShowWorkbookResponse struct {
	Id         uuid.UUID               `json:"id"`
	Name       string                  `json:"name"`
	RoomId     string                  `json:"roomId"`
	Worksheets []ShowWorksheetResponse `json:"worksheets,omitempty"`
	CreatedAt  time.Time               `json:"createdAt"`
	UpdatedAt  *time.Time              `json:"updatedAt"`
}

type UpdateWorkbookRequest struct {
	Id   uuid.UUID
	Name string `json:"name" validate:"required"`
}

type UpdateWorkbookResponse struct {
	Id uuid.UUID `json:"id"`
}

type GrantPermissionRequest struct {
	WorkbookId  uuid.UUID
	UserId      string `json:"userId" validate:"required"`
	AccessLevel string `json:"accessLevel" validate:"required,oneof=full read none"`
}

type PermissionResponse struct {
	UserId      string `json:"userId"`
	AccessLevel string `json:"accessLevel"`
}
