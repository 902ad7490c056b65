package unitofwork

import (
	"context"

	"sheetroom-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	WorkbookRepository() contract.WorkbookRepository
	WorksheetRepository() contract.WorksheetRepository
	CellRepository() contract.CellRepository
	ChangeHistoryRepository() contract.ChangeHistoryRepository
	PermissionRepository() contract.PermissionRepository
}
