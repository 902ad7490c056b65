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
	"sheetroom-be/pkg/events"
	"sheetroom-be/pkg/nats"
	"sheetroom-be/pkg/rooms"

	"github.com/google/uuid"
)

type IWorkbookService interface {
	GetAll(ctx context.Context) ([]*dto.ShowWorkbookResponse, error)
	Create(ctx context.Context, req *dto.CreateWorkbookRequest) (*dto.CreateWorkbookResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowWorkbookResponse, error)
	Update(ctx context.Context, req *dto.UpdateWorkbookRequest) (*dto.UpdateWorkbookResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GrantPermission(ctx context.Context, req *dto.GrantPermissionRequest) error
	GetPermissions(ctx context.Context, id uuid.UUID) ([]*dto.PermissionResponse, error)
}

type workbookService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  *nats.Publisher
	logger     logger.ILogger
}

func NewWorkbookService(
	uowFactory unitofwork.RepositoryFactory,
	publisher *nats.Publisher,
	log logger.ILogger,
) IWorkbookService {
	return &workbookService{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     log,
	}
}

func (s *workbookService) GetAll(ctx context.Context) ([]*dto.ShowWorkbookResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	workbooks, err := uow.WorkbookRepository().FindAll(ctx, specification.OrderBy{Field: "created_at"})
	if err != nil {
		return nil, err
	}

	result := make([]*dto.ShowWorkbookResponse, 0, len(workbooks))
	for _, workbook := range workbooks {
		result = append(result, &dto.ShowWorkbookResponse{
			Id:        workbook.Id,
			Name:      workbook.Name,
			RoomId:    workbook.RoomId,
			CreatedAt: workbook.CreatedAt,
			UpdatedAt: workbook.UpdatedAt,
		})
	}
	return result, nil
}

func (s *workbookService) Create(ctx context.Context, req *dto.CreateWorkbookRequest) (*dto.CreateWorkbookResponse, error) {
	id := uuid.New()

	// A workbook gets exactly one room id for its whole lifetime. The
	// client may pin one explicitly; otherwise it derives from the id.
	roomId := req.RoomId
	if roomId == "" {
		roomId = rooms.WorkbookRoomID(id.String())
	}
	if !rooms.IsValid(roomId) {
		return nil, serverutils.NewBadRequestError("invalid room id")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.WorkbookRepository().FindOne(ctx, specification.ByRoomPattern{RoomID: roomId})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, serverutils.NewBadRequestError("room id already taken")
	}

	workbook := &entity.Workbook{
		Id:        id,
		Name:      req.Name,
		RoomId:    roomId,
		CreatedAt: time.Now(),
	}
	if err := uow.WorkbookRepository().Create(ctx, workbook); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.WorkbookCreated(id.String(), roomId, req.Name)); err != nil {
			s.logger.Warn("WorkbookService", "Event publish failed", map[string]interface{}{
				"workbook_id": id.String(),
				"error":       err.Error(),
			})
		}
	}

	return &dto.CreateWorkbookResponse{Id: id, RoomId: roomId}, nil
}

func (s *workbookService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowWorkbookResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	workbook, err := uow.WorkbookRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if workbook == nil {
		return nil, serverutils.NewNotFoundError("workbook not found")
	}

	worksheets, err := uow.WorksheetRepository().FindAll(ctx,
		specification.ByWorkbookID{WorkbookID: id},
		specification.OrderBy{Field: "sheet_index"},
	)
	if err != nil {
		return nil, err
	}

	res := &dto.ShowWorkbookResponse{
		Id:        workbook.Id,
		Name:      workbook.Name,
		RoomId:    workbook.RoomId,
		CreatedAt: workbook.CreatedAt,
		UpdatedAt: workbook.UpdatedAt,
	}
	for _, ws := range worksheets {
		res.Worksheets = append(res.Worksheets, dto.ShowWorksheetResponse{
			Id:         ws.Id,
			WorkbookId: ws.WorkbookId,
			Name:       ws.Name,
			SheetIndex: ws.SheetIndex,
			RoomId:     rooms.WorksheetRoomID(workbook.Id.String(), ws.Id.String()),
			CreatedAt:  ws.CreatedAt,
			UpdatedAt:  ws.UpdatedAt,
		})
	}
	return res, nil
}

func (s *workbookService) Update(ctx context.Context, req *dto.UpdateWorkbookRequest) (*dto.UpdateWorkbookResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	workbook, err := uow.WorkbookRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if workbook == nil {
		return nil, serverutils.NewNotFoundError("workbook not found")
	}

	// Only the name is mutable. RoomId is immutable after creation.
	now := time.Now()
	workbook.Name = req.Name
	workbook.UpdatedAt = &now
	if err := uow.WorkbookRepository().Update(ctx, workbook); err != nil {
		return nil, err
	}
	return &dto.UpdateWorkbookResponse{Id: workbook.Id}, nil
}

func (s *workbookService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	workbook, err := uow.WorkbookRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if workbook == nil {
		return serverutils.NewNotFoundError("workbook not found")
	}

	// Worksheets, cells and history rows go with it via FK cascade.
	return uow.WorkbookRepository().Delete(ctx, id)
}

func (s *workbookService) GrantPermission(ctx context.Context, req *dto.GrantPermissionRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	workbook, err := uow.WorkbookRepository().FindOne(ctx, specification.ByID{ID: req.WorkbookId})
	if err != nil {
		return err
	}
	if workbook == nil {
		return serverutils.NewNotFoundError("workbook not found")
	}

	return uow.PermissionRepository().Upsert(ctx, &entity.WorkbookPermission{
		Id:          uuid.New(),
		WorkbookId:  req.WorkbookId,
		UserId:      req.UserId,
		AccessLevel: req.AccessLevel,
		GrantedAt:   time.Now(),
	})
}

func (s *workbookService) GetPermissions(ctx context.Context, id uuid.UUID) ([]*dto.PermissionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	permissions, err := uow.PermissionRepository().FindAll(ctx, specification.ByWorkbookID{WorkbookID: id})
	if err != nil {
		return nil, err
	}

	result := make([]*dto.PermissionResponse, 0, len(permissions))
	for _, p := range permissions {
		result = append(result, &dto.PermissionResponse{
			UserId:      p.UserId,
			AccessLevel: p.AccessLevel,
		})
	}
	return result, nil
}
