package implementation

import (
	"context"
	"errors"

	"sheetroom-be/internal/entity"
	"sheetroom-be/internal/mapper"
	"sheetroom-be/internal/model"
	"sheetroom-be/internal/repository/contract"
	"sheetroom-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorksheetRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WorksheetMapper
}

func NewWorksheetRepository(db *gorm.DB) contract.WorksheetRepository {
	return &WorksheetRepositoryImpl{
		db:     db,
		mapper: mapper.NewWorksheetMapper(),
	}
}

func (r *WorksheetRepositoryImpl) Create(ctx context.Context, worksheet *entity.Worksheet) error {
	m := r.mapper.ToModel(worksheet)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*worksheet = *r.mapper.ToEntity(m)
	return nil
}

func (r *WorksheetRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Worksheet{}, id).Error
}

func (r *WorksheetRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Worksheet, error) {
	var m model.Worksheet
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *WorksheetRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Worksheet, error) {
	var models []*model.Worksheet
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
