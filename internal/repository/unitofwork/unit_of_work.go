package unitofwork

import (
	"context"

	"quantcloud-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AccountRepository() contract.AccountRepository
	LedgerRepository() contract.LedgerRepository
	JobRepository() contract.JobRepository
	ModelFileRepository() contract.ModelFileRepository
	DownloadTokenRepository() contract.DownloadTokenRepository
	QuantizationReportRepository() contract.QuantizationReportRepository
}
