package service

import (
	"context"
	"time"

	"sheetroom-be/internal/dto"
	"sheetroom-be/internal/entity"
	"sheetroom-be/internal/pkg/serverutils"
	"sheetroom-be/internal/repository/specification"
	"sheetroom-be/internal/repository/unitofwork"
	"sheetroom-be/pkg/rooms"

	"github.com/google/uuid"
)

type IWorksheetService interface {
	GetAll(ctx context.Context, workbookId uuid.UUID) ([]*dto.ShowWorksheetResponse, error)
	Create(ctx context.Context, req *dto.CreateWorksheetRequest) (*dto.CreateWorksheetResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowWorksheetResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type worksheetService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewWorksheetService(uowFactory unitofwork.RepositoryFactory) IWorksheetService {
	return &worksheetService{uowFactory: uowFactory}
}

func (s *worksheetService) GetAll(ctx context.Context, workbookId uuid.UUID) ([]*dto.ShowWorksheetResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	workbook, err := uow.WorkbookRepository().FindOne(ctx, specification.ByID{ID: workbookId})
	if err != nil {
		return nil, err
	}
	if workbook == nil {
		return nil, serverutils.NewNotFoundError("workbook not found")
	}

	worksheets, err := uow.WorksheetRepository().FindAll(ctx,
		specification.ByWorkbookID{WorkbookID: workbookId},
		specification.OrderBy{Field: "sheet_index"},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.ShowWorksheetResponse, 0, len(worksheets))
	for _, ws := range worksheets {
		result = append(result, s.toResponse(ws))
	}
	return result, nil
}

func (s *worksheetService) Create(ctx context.Context, req *dto.CreateWorksheetRequest) (*dto.CreateWorksheetResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	workbook, err := uow.WorkbookRepository().FindOne(ctx, specification.ByID{ID: req.WorkbookId})
	if err != nil {
		return nil, err
	}
	if workbook == nil {
		return nil, serverutils.NewNotFoundError("workbook not found")
	}

	sheetIndex := req.SheetIndex
	if sheetIndex < 0 {
		// Append: one past the current highest index.
		last, err := uow.WorksheetRepository().FindOne(ctx,
			specification.ByWorkbookID{WorkbookID: req.WorkbookId},
			specification.OrderBy{Field: "sheet_index", Desc: true},
		)
		if err != nil {
			return nil, err
		}
		sheetIndex = 0
		if last != nil {
			sheetIndex = last.SheetIndex + 1
		}
	}

	worksheet := &entity.Worksheet{
		Id:         uuid.New(),
		WorkbookId: req.WorkbookId,
		Name:       req.Name,
		SheetIndex: sheetIndex,
		CreatedAt:  time.Now(),
	}
	if err := uow.WorksheetRepository().Create(ctx, worksheet); err != nil {
		return nil, err
	}
	return &dto.CreateWorksheetResponse{Id: worksheet.Id}, nil
}

func (s *worksheetService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowWorksheetResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	worksheet, err := uow.WorksheetRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if worksheet == nil {
		return nil, serverutils.NewNotFoundError("worksheet not found")
	}
	return s.toResponse(worksheet), nil
}

func (s *worksheetService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	worksheet, err := uow.WorksheetRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if worksheet == nil {
		return serverutils.NewNotFoundError("worksheet not found")
	}
	return uow.WorksheetRepository().Delete(ctx, id)
}

func (s *worksheetService) toResponse(ws *entity.Worksheet) *dto.ShowWorksheetResponse {
	return &dto.ShowWorksheetResponse{
		Id:         ws.Id,
		WorkbookId: ws.WorkbookId,
		Name:       ws.Name,
		SheetIndex: ws.SheetIndex,
		RoomId:     rooms.WorksheetRoomID(ws.WorkbookId.String(), ws.Id.String()),
		CreatedAt:  ws.CreatedAt,
		UpdatedAt:  ws.UpdatedAt,
	}
}
