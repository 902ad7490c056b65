package unitofwork

import (
	"context"
	"fmt"

	"sheetroom-be/internal/repository/contract"
	"sheetroom-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) WorkbookRepository() contract.WorkbookRepository {
	return implementation.NewWorkbookRepository(u.getDB())
}

func (u *UnitOfWorkImpl) WorksheetRepository() contract.WorksheetRepository {
	return implementation.NewWorksheetRepository(u.getDB())
}

func (u *UnitOfWorkImpl) CellRepository() contract.CellRepository {
	return implementation.NewCellRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ChangeHistoryRepository() contract.ChangeHistoryRepository {
	return implementation.NewChangeHistoryRepository(u.getDB())
}

func (u *UnitOfWorkImpl) PermissionRepository() contract.PermissionRepository {
	return implementation.NewPermissionRepository(u.getDB())
}
