package unitofwork

import (
	"context"
	"fmt"

	"quantcloud-be/internal/repository/contract"
	"quantcloud-be/internal/repository/implementation"

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

func (u *UnitOfWorkImpl) AccountRepository() contract.AccountRepository {
	return implementation.NewAccountRepository(u.getDB())
}

func (u *UnitOfWorkImpl) LedgerRepository() contract.LedgerRepository {
	return implementation.NewLedgerRepository(u.getDB())
}

func (u *UnitOfWorkImpl) JobRepository() contract.JobRepository {
	return implementation.NewJobRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ModelFileRepository() contract.ModelFileRepository {
	return implementation.NewModelFileRepository(u.getDB())
}

func (u *UnitOfWorkImpl) DownloadTokenRepository() contract.DownloadTokenRepository {
	return implementation.NewDownloadTokenRepository(u.getDB())
}

func (u *UnitOfWorkImpl) QuantizationReportRepository() contract.QuantizationReportRepository {
	return implementation.NewQuantizationReportRepository(u.getDB())
}
