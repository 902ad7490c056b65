package implementation

import (
	"context"
	"errors"
	"time"

	"sheetroom-be/internal/entity"
	"sheetroom-be/internal/mapper"
	"sheetroom-be/internal/model"
	"sheetroom-be/internal/repository/contract"
	"sheetroom-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// cellConflictTarget is the single partition key used by every write path.
// The original schema flirted with (worksheet_id, row, col) on some reads;
// here the room partition is authoritative everywhere.
var cellConflictTarget = []clause.Column{
	{Name: "room_id"},
	{Name: "row_index"},
	{Name: "col_index"},
}

var cellConflictUpdates = clause.AssignmentColumns([]string{
	"worksheet_id", "value", "formula", "style", "updated_by", "updated_at",
})

type CellRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CellMapper
}

func NewCellRepository(db *gorm.DB) contract.CellRepository {
	return &CellRepositoryImpl{
		db:     db,
		mapper: mapper.NewCellMapper(),
	}
}

func (r *CellRepositoryImpl) GetCells(ctx context.Context, worksheetID uuid.UUID, roomID *string) ([]*entity.Cell, error) {
	var models []*model.Cell
	query := r.db.WithContext(ctx).Where("worksheet_id = ?", worksheetID)
	if roomID != nil {
		query = query.Where("room_id = ?", *roomID)
	}
	if err := query.Order("row_index ASC, col_index ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *CellRepositoryImpl) Upsert(ctx context.Context, cell *entity.Cell) error {
	m := r.prepare(cell)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   cellConflictTarget,
		DoUpdates: cellConflictUpdates,
	}).Create(m).Error
	if err != nil {
		return err
	}
	*cell = *r.mapper.ToEntity(m)
	return nil
}

func (r *CellRepositoryImpl) UpsertBatch(ctx context.Context, cells []*entity.Cell) error {
	if len(cells) == 0 {
		return nil
	}
	models := make([]*model.Cell, len(cells))
	for i, c := range cells {
		models[i] = r.prepare(c)
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   cellConflictTarget,
		DoUpdates: cellConflictUpdates,
	}).Create(&models).Error
}

func (r *CellRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Cell, error) {
	var m model.Cell
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CellRepositoryImpl) Delete(ctx context.Context, worksheetID uuid.UUID, row, col int) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("worksheet_id = ? AND row_index = ? AND col_index = ?", worksheetID, row, col).
		Delete(&model.Cell{})
	return result.RowsAffected, result.Error
}

func (r *CellRepositoryImpl) prepare(cell *entity.Cell) *model.Cell {
	if cell.Id == uuid.Nil {
		cell.Id = uuid.New()
	}
	if cell.UpdatedAt.IsZero() {
		cell.UpdatedAt = time.Now()
	}
	return r.mapper.ToModel(cell)
}

type ChangeHistoryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChangeHistoryMapper
}

func NewChangeHistoryRepository(db *gorm.DB) contract.ChangeHistoryRepository {
	return &ChangeHistoryRepositoryImpl{
		db:     db,
		mapper: mapper.NewChangeHistoryMapper(),
	}
}

func (r *ChangeHistoryRepositoryImpl) Append(ctx context.Context, change *entity.ChangeEntry) error {
	if change.Id == uuid.Nil {
		change.Id = uuid.New()
	}
	m := r.mapper.ToModel(change)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*change = *r.mapper.ToEntity(m)
	return nil
}

func (r *ChangeHistoryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChangeEntry, error) {
	var models []*model.ChangeHistory
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
