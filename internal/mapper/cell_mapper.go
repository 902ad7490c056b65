package mapper

import (
	"encoding/json"

	"sheetroom-be/internal/entity"
	"sheetroom-be/internal/model"

	"gorm.io/datatypes"
)

type CellMapper struct{}

func NewCellMapper() *CellMapper {
	return &CellMapper{}
}

func (m *CellMapper) ToEntity(c *model.Cell) *entity.Cell {
	if c == nil {
		return nil
	}

	var style json.RawMessage
	if len(c.Style) > 0 {
		style = json.RawMessage(c.Style)
	}

	return &entity.Cell{
		Id:          c.Id,
		WorksheetId: c.WorksheetId,
		RoomId:      c.RoomId,
		RowIndex:    c.RowIndex,
		ColIndex:    c.ColIndex,
		Value:       c.Value,
		Formula:     c.Formula,
		Style:       style,
		UpdatedBy:   c.UpdatedBy,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (m *CellMapper) ToModel(c *entity.Cell) *model.Cell {
	if c == nil {
		return nil
	}

	var style datatypes.JSON
	if len(c.Style) > 0 {
		style = datatypes.JSON(c.Style)
	}

	return &model.Cell{
		Id:          c.Id,
		WorksheetId: c.WorksheetId,
		RoomId:      c.RoomId,
		RowIndex:    c.RowIndex,
		ColIndex:    c.ColIndex,
		Value:       c.Value,
		Formula:     c.Formula,
		Style:       style,
		UpdatedBy:   c.UpdatedBy,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (m *CellMapper) ToEntities(cells []*model.Cell) []*entity.Cell {
	entities := make([]*entity.Cell, len(cells))
	for i, c := range cells {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func (m *CellMapper) ToModels(cells []*entity.Cell) []*model.Cell {
	models := make([]*model.Cell, len(cells))
	for i, c := range cells {
		models[i] = m.ToModel(c)
	}
	return models
}

type ChangeHistoryMapper struct{}

func NewChangeHistoryMapper() *ChangeHistoryMapper {
	return &ChangeHistoryMapper{}
}

func (m *ChangeHistoryMapper) ToEntity(c *model.ChangeHistory) *entity.ChangeEntry {
	if c == nil {
		return nil
	}
	return &entity.ChangeEntry{
		Id:          c.Id,
		WorksheetId: c.WorksheetId,
		RowIndex:    c.RowIndex,
		ColIndex:    c.ColIndex,
		OldValue:    c.OldValue,
		NewValue:    c.NewValue,
		UserId:      c.UserId,
		ChangedAt:   c.ChangedAt,
	}
}

func (m *ChangeHistoryMapper) ToModel(c *entity.ChangeEntry) *model.ChangeHistory {
	if c == nil {
		return nil
	}
	return &model.ChangeHistory{
		Id:          c.Id,
		WorksheetId: c.WorksheetId,
		RowIndex:    c.RowIndex,
		ColIndex:    c.ColIndex,
		OldValue:    c.OldValue,
		NewValue:    c.NewValue,
		UserId:      c.UserId,
		ChangedAt:   c.ChangedAt,
	}
}

func (m *ChangeHistoryMapper) ToEntities(changes []*model.ChangeHistory) []*entity.ChangeEntry {
	entities := make([]*entity.ChangeEntry, len(changes))
	for i, c := range changes {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
