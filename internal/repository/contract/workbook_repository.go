package contract

import (
	"context"

	"sheetroom-be/internal/entity"
	"sheetroom-be/internal/repository/specification"

	"github.com/google/uuid"
)

type WorkbookRepository interface {
	Create(ctx context.Context, workbook *entity.Workbook) error
	Update(ctx context.Context, workbook *entity.Workbook) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Workbook, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Workbook, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type WorksheetRepository interface {
	Create(ctx context.Context, worksheet *entity.Worksheet) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Worksheet, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Worksheet, error)
}

type PermissionRepository interface {
	Upsert(ctx context.Context, permission *entity.WorkbookPermission) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WorkbookPermission, error)
}
