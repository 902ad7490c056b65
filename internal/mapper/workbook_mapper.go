package mapper

import (
	"time"

	"sheetroom-be/internal/entity"
	"sheetroom-be/internal/model"
)

type WorkbookMapper struct{}

func NewWorkbookMapper() *WorkbookMapper {
	return &WorkbookMapper{}
}

func (m *WorkbookMapper) ToEntity(w *model.Workbook) *entity.Workbook {
	if w == nil {
		return nil
	}

	var updatedAt *time.Time
	if !w.UpdatedAt.IsZero() {
		t := w.UpdatedAt
		updatedAt = &t
	}

	return &entity.Workbook{
		Id:        w.Id,
		Name:      w.Name,
		RoomId:    w.RoomId,
		CreatedAt: w.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *WorkbookMapper) ToModel(w *entity.Workbook) *model.Workbook {
	if w == nil {
		return nil
	}

	var updatedAt time.Time
	if w.UpdatedAt != nil {
		updatedAt = *w.UpdatedAt
	}

	return &model.Workbook{
		Id:        w.Id,
		Name:      w.Name,
		RoomId:    w.RoomId,
		CreatedAt: w.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *WorkbookMapper) ToEntities(workbooks []*model.Workbook) []*entity.Workbook {
	entities := make([]*entity.Workbook, len(workbooks))
	for i, w := range workbooks {
		entities[i] = m.ToEntity(w)
	}
	return entities
}

type WorksheetMapper struct{}

func NewWorksheetMapper() *WorksheetMapper {
	return &WorksheetMapper{}
}

func (m *WorksheetMapper) ToEntity(w *model.Worksheet) *entity.Worksheet {
	if w == nil {
		return nil
	}

	var updatedAt *time.Time
	if !w.UpdatedAt.IsZero() {
		t := w.UpdatedAt
		updatedAt = &t
	}

	return &entity.Worksheet{
		Id:         w.Id,
		WorkbookId: w.WorkbookId,
		Name:       w.Name,
		SheetIndex: w.SheetIndex,
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *WorksheetMapper) ToModel(w *entity.Worksheet) *model.Worksheet {
	if w == nil {
		return nil
	}

	var updatedAt time.Time
	if w.UpdatedAt != nil {
		updatedAt = *w.UpdatedAt
	}

	return &model.Worksheet{
		Id:         w.Id,
		WorkbookId: w.WorkbookId,
		Name:       w.Name,
		SheetIndex: w.SheetIndex,
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *WorksheetMapper) ToEntities(worksheets []*model.Worksheet) []*entity.Worksheet {
	entities := make([]*entity.Worksheet, len(worksheets))
	for i, w := range worksheets {
		entities[i] = m.ToEntity(w)
	}
	return entities
}

type PermissionMapper struct{}

func NewPermissionMapper() *PermissionMapper {
	return &PermissionMapper{}
}

func (m *PermissionMapper) ToEntity(p *model.WorkbookPermission) *entity.WorkbookPermission {
	if p == nil {
		return nil
	}
	return &entity.WorkbookPermission{
		Id:          p.Id,
		WorkbookId:  p.WorkbookId,
		UserId:      p.UserId,
		AccessLevel: p.AccessLevel,
		GrantedBy:   p.GrantedBy,
		GrantedAt:   p.GrantedAt,
	}
}

func (m *PermissionMapper) ToModel(p *entity.WorkbookPermission) *model.WorkbookPermission {
	if p == nil {
		return nil
	}
	return &model.WorkbookPermission{
		Id:          p.Id,
		WorkbookId:  p.WorkbookId,
		UserId:      p.UserId,
		AccessLevel: p.AccessLevel,
		GrantedBy:   p.GrantedBy,
		GrantedAt:   p.GrantedAt,
	}
}

func (m *PermissionMapper) ToEntities(permissions []*model.WorkbookPermission) []*entity.WorkbookPermission {
	entities := make([]*entity.WorkbookPermission, len(permissions))
	for i, p := range permissions {
		entities[i] = m.ToEntity(p)
	}
	return entities
}
