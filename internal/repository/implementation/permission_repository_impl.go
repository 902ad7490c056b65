package implementation

import (
	"context"

	"sheetroom-be/internal/entity"
	"sheetroom-be/internal/mapper"
	"sheetroom-be/internal/model"
	"sheetroom-be/internal/repository/contract"
	"sheetroom-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PermissionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PermissionMapper
}

func NewPermissionRepository(db *gorm.DB) contract.PermissionRepository {
	return &PermissionRepositoryImpl{
		db:     db,
		mapper: mapper.NewPermissionMapper(),
	}
}

func (r *PermissionRepositoryImpl) Upsert(ctx context.Context, permission *entity.WorkbookPermission) error {
	if permission.Id == uuid.Nil {
		permission.Id = uuid.New()
	}
	m := r.mapper.ToModel(permission)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "workbook_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_level", "granted_by", "granted_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*permission = *r.mapper.ToEntity(m)
	return nil
}

func (r *PermissionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WorkbookPermission, error) {
	var models []*model.WorkbookPermission
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
