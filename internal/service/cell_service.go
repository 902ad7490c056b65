package service

import (
	"context"
	"time"

	"sheetroom-be/internal/dto"
	"sheetroom-be/internal/entity"
	"sheetroom-be/internal/pkg/logger"
	"sheetroom-be/internal/pkg/serverutils"
	"sheetroom-be/internal/repository/specification"
	"sheetroom-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type ICellService interface {
	GetCells(ctx context.Context, worksheetId uuid.UUID, roomId *string) ([]*dto.CellResponse, error)
	GetCell(ctx context.Context, worksheetId uuid.UUID, row, col int, roomId *string) (*dto.CellResponse, error)
	Upsert(ctx context.Context, req *dto.UpsertCellRequest) error
	UpsertBatch(ctx context.Context, req *dto.UpsertCellsRequest) error
	Delete(ctx context.Context, worksheetId uuid.UUID, row, col int) (*dto.DeleteCellResponse, error)
	GetHistory(ctx context.Context, worksheetId uuid.UUID, limit int) ([]*dto.ChangeHistoryResponse, error)
}

type cellService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewCellService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	log logger.ILogger,
) ICellService {
	return &cellService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		logger:           log,
	}
}

func (s *cellService) GetCells(ctx context.Context, worksheetId uuid.UUID, roomId *string) ([]*dto.CellResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	cells, err := uow.CellRepository().GetCells(ctx, worksheetId, roomId)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.CellResponse, 0, len(cells))
	for _, cell := range cells {
		result = append(result, &dto.CellResponse{
			RowIndex:  cell.RowIndex,
			ColIndex:  cell.ColIndex,
			Value:     cell.Value,
			Formula:   cell.Formula,
			Style:     cell.Style,
			RoomId:    cell.RoomId,
			UpdatedBy: cell.UpdatedBy,
			UpdatedAt: cell.UpdatedAt,
		})
	}
	return result, nil
}

func (s *cellService) GetCell(ctx context.Context, worksheetId uuid.UUID, row, col int, roomId *string) (*dto.CellResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.ByWorksheetID{WorksheetID: worksheetId},
		specification.ByPosition{Row: row, Col: col},
	}
	if roomId != nil {
		specs = append(specs, specification.ByRoomID{RoomID: *roomId})
	}

	cell, err := uow.CellRepository().FindOne(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if cell == nil {
		return nil, serverutils.NewNotFoundError("cell not found")
	}
	return &dto.CellResponse{
		RowIndex:  cell.RowIndex,
		ColIndex:  cell.ColIndex,
		Value:     cell.Value,
		Formula:   cell.Formula,
		Style:     cell.Style,
		RoomId:    cell.RoomId,
		UpdatedBy: cell.UpdatedBy,
		UpdatedAt: cell.UpdatedAt,
	}, nil
}

func (s *cellService) Upsert(ctx context.Context, req *dto.UpsertCellRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := s.requireWorksheet(ctx, uow, req.WorksheetId); err != nil {
		return err
	}

	cell := &entity.Cell{
		WorksheetId: req.WorksheetId,
		RoomId:      req.RoomId,
		RowIndex:    req.RowIndex,
		ColIndex:    req.ColIndex,
		Value:       req.Value,
		Formula:     req.Formula,
		Style:       req.Style,
		UpdatedBy:   req.UserId,
		UpdatedAt:   time.Now(),
	}
	if err := uow.CellRepository().Upsert(ctx, cell); err != nil {
		return err
	}

	s.recordChange(ctx, req.WorksheetId, req.RowIndex, req.ColIndex, req.Value, req.UserId)
	return nil
}

// UpsertBatch persists the whole batch as one statement: either every cell
// lands or none does.
func (s *cellService) UpsertBatch(ctx context.Context, req *dto.UpsertCellsRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := s.requireWorksheet(ctx, uow, req.WorksheetId); err != nil {
		return err
	}

	now := time.Now()
	cells := make([]*entity.Cell, 0, len(req.Cells))
	for _, item := range req.Cells {
		cells = append(cells, &entity.Cell{
			WorksheetId: req.WorksheetId,
			RoomId:      req.RoomId,
			RowIndex:    item.RowIndex,
			ColIndex:    item.ColIndex,
			Value:       item.Value,
			Formula:     item.Formula,
			Style:       item.Style,
			UpdatedBy:   req.UserId,
			UpdatedAt:   now,
		})
	}
	if err := uow.CellRepository().UpsertBatch(ctx, cells); err != nil {
		return err
	}

	for _, item := range req.Cells {
		s.recordChange(ctx, req.WorksheetId, item.RowIndex, item.ColIndex, item.Value, req.UserId)
	}
	return nil
}

func (s *cellService) Delete(ctx context.Context, worksheetId uuid.UUID, row, col int) (*dto.DeleteCellResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	deleted, err := uow.CellRepository().Delete(ctx, worksheetId, row, col)
	if err != nil {
		return nil, err
	}
	return &dto.DeleteCellResponse{Deleted: deleted}, nil
}

func (s *cellService) GetHistory(ctx context.Context, worksheetId uuid.UUID, limit int) ([]*dto.ChangeHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.ByWorksheetID{WorksheetID: worksheetId},
		specification.OrderBy{Field: "changed_at", Desc: true},
	}
	if limit > 0 {
		specs = append(specs, specification.Limit{N: limit})
	}

	entries, err := uow.ChangeHistoryRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.ChangeHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		result = append(result, &dto.ChangeHistoryResponse{
			RowIndex:  entry.RowIndex,
			ColIndex:  entry.ColIndex,
			OldValue:  entry.OldValue,
			NewValue:  entry.NewValue,
			UserId:    entry.UserId,
			ChangedAt: entry.ChangedAt,
		})
	}
	return result, nil
}

func (s *cellService) requireWorksheet(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) error {
	worksheet, err := uow.WorksheetRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if worksheet == nil {
		return serverutils.NewNotFoundError("worksheet not found")
	}
	return nil
}

// recordChange is best-effort: history lag never fails a write.
func (s *cellService) recordChange(ctx context.Context, worksheetId uuid.UUID, row, col int, value, userId string) {
	if s.publisherService == nil {
		return
	}
	err := s.publisherService.PublishCellChange(ctx, &dto.CellChangeMessage{
		WorksheetId: worksheetId,
		RowIndex:    row,
		ColIndex:    col,
		NewValue:    value,
		UserId:      userId,
	})
	if err != nil {
		s.logger.Warn("CellService", "Change publish failed", map[string]interface{}{
			"worksheet_id": worksheetId.String(),
			"error":        err.Error(),
		})
	}
}
