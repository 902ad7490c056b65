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

type WorkbookRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WorkbookMapper
}

func NewWorkbookRepository(db *gorm.DB) contract.WorkbookRepository {
	return &WorkbookRepositoryImpl{
		db:     db,
		mapper: mapper.NewWorkbookMapper(),
	}
}

func applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *WorkbookRepositoryImpl) Create(ctx context.Context, workbook *entity.Workbook) error {
	m := r.mapper.ToModel(workbook)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*workbook = *r.mapper.ToEntity(m)
	return nil
}

func (r *WorkbookRepositoryImpl) Update(ctx context.Context, workbook *entity.Workbook) error {
	m := r.mapper.ToModel(workbook)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*workbook = *r.mapper.ToEntity(m)
	return nil
}

func (r *WorkbookRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Workbook{}, id).Error
}

func (r *WorkbookRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Workbook, error) {
	var m model.Workbook
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *WorkbookRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Workbook, error) {
	var models []*model.Workbook
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *WorkbookRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Workbook{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
