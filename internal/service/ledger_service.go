// FILE: internal/service/ledger_service.go
package service

import (
	"context"
	"time"

	"quantcloud-be/internal/dto"
	"quantcloud-be/internal/entity"
	"quantcloud-be/internal/repository/specification"
	"quantcloud-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// cycleDays is the billing period length for every plan.
const cycleDays = 30

type ILedgerService interface {
	GetBalance(ctx context.Context, userId uuid.UUID) (*dto.BalanceResponse, error)
	GetHistory(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*dto.LedgerEntryResponse, error)
	ChangePlan(ctx context.Context, userId uuid.UUID, req *dto.ChangePlanRequest) (*dto.BalanceResponse, error)
}

type ledgerService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewLedgerService(uowFactory unitofwork.RepositoryFactory) ILedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
	}
}

// ensureAccountLocked loads the caller's account under FOR UPDATE, creating
// a free-tier account on first touch. Must run inside a transaction.
func ensureAccountLocked(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, now time.Time) (*entity.Account, error) {
	account, err := uow.AccountRepository().FindOneByUserIdForUpdate(ctx, userId)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}

	account = &entity.Account{
		Id:             uuid.New(),
		UserId:         userId,
		Plan:           entity.PlanFree,
		MonthlyCredits: entity.PlanFree.MonthlyCredits(),
		CreditsUsed:    0,
		PeriodStart:    now,
		PeriodEnd:      now.AddDate(0, 0, cycleDays),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uow.AccountRepository().Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// recordEntry appends one immutable ledger row reflecting the account's
// balance after the mutation.
func recordEntry(ctx context.Context, uow unitofwork.UnitOfWork, account *entity.Account, amount int, jobId *uuid.UUID, reason entity.LedgerReason, description string) error {
	entry := &entity.LedgerEntry{
		Id:           uuid.New(),
		AccountId:    account.Id,
		Amount:       amount,
		BalanceAfter: account.LedgerBalance(),
		JobId:        jobId,
		Reason:       reason,
		Description:  description,
		CreatedAt:    time.Now(),
	}
	return uow.LedgerRepository().Create(ctx, entry)
}

// resetCycleIfElapsed rolls the billing window forward when it has lapsed.
// Caller must hold the account lock.
func resetCycleIfElapsed(ctx context.Context, uow unitofwork.UnitOfWork, account *entity.Account, now time.Time) error {
	if !account.CycleElapsed(now) {
		return nil
	}

	restored := account.CreditsUsed
	account.CreditsUsed = 0
	account.PeriodStart = now
	account.PeriodEnd = now.AddDate(0, 0, cycleDays)
	account.UpdatedAt = now
	if err := uow.AccountRepository().Update(ctx, account); err != nil {
		return err
	}
	return recordEntry(ctx, uow, account, restored, nil, entity.LedgerReasonCreditReset, "billing cycle reset")
}

// debitForJob reserves credits for a job start. Caller must hold the
// account lock and have applied any pending cycle reset.
func debitForJob(ctx context.Context, uow unitofwork.UnitOfWork, account *entity.Account, jobId uuid.UUID, amount int, now time.Time) error {
	if !account.CanAfford(amount) {
		return &dto.InsufficientCreditError{
			Required:  amount,
			Available: account.Balance(),
		}
	}

	// Unlimited plans track usage too, so their entries conserve.
	account.CreditsUsed += amount
	account.UpdatedAt = now
	if err := uow.AccountRepository().Update(ctx, account); err != nil {
		return err
	}
	return recordEntry(ctx, uow, account, -amount, &jobId, entity.LedgerReasonDebitJobStart, "job start")
}

// refundForJob returns credits for a job that will never complete. At most
// one refund per job: the unique index on (job_id, reason) backs up the
// in-transaction check. Returns false when the job was already refunded.
func refundForJob(ctx context.Context, uow unitofwork.UnitOfWork, account *entity.Account, jobId uuid.UUID, amount int, description string, now time.Time) (bool, error) {
	existing, err := uow.LedgerRepository().Count(ctx,
		specification.Filter("job_id", jobId),
		specification.Filter("reason", entity.LedgerReasonCreditRefund),
	)
	if err != nil {
		return false, err
	}
	if existing > 0 {
		return false, nil
	}

	// Restore the exact reserved amount, even when a cycle reset landed
	// in between; the balance then sits above the allotment until the
	// next reset, which keeps the entry chain consistent.
	account.CreditsUsed -= amount
	account.UpdatedAt = now
	if err := uow.AccountRepository().Update(ctx, account); err != nil {
		return false, err
	}
	if err := recordEntry(ctx, uow, account, amount, &jobId, entity.LedgerReasonCreditRefund, description); err != nil {
		return false, err
	}
	return true, nil
}

func (s *ledgerService) GetBalance(ctx context.Context, userId uuid.UUID) (*dto.BalanceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	now := time.Now()
	account, err := ensureAccountLocked(ctx, uow, userId, now)
	if err != nil {
		return nil, err
	}
	if err := resetCycleIfElapsed(ctx, uow, account, now); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return dto.NewBalanceResponse(account), nil
}

func (s *ledgerService) GetHistory(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*dto.LedgerEntryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	account, err := uow.AccountRepository().FindOne(ctx, specification.Filter("user_id", userId))
	if err != nil {
		return nil, err
	}
	if account == nil {
		return []*dto.LedgerEntryResponse{}, nil
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	entries, err := uow.LedgerRepository().FindAll(ctx,
		specification.Filter("account_id", account.Id),
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, dto.NewLedgerEntryResponse(e))
	}
	return result, nil
}

func (s *ledgerService) ChangePlan(ctx context.Context, userId uuid.UUID, req *dto.ChangePlanRequest) (*dto.BalanceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	now := time.Now()
	account, err := ensureAccountLocked(ctx, uow, userId, now)
	if err != nil {
		return nil, err
	}

	newPlan := entity.PlanTier(req.Plan)
	if newPlan != account.Plan {
		// A plan change opens a fresh cycle with the new allotment. The
		// adjustment entry carries the balance delta so replaying the
		// ledger still reproduces every snapshot.
		before := account.LedgerBalance()
		account.Plan = newPlan
		account.MonthlyCredits = newPlan.MonthlyCredits()
		account.CreditsUsed = 0
		account.PeriodStart = now
		account.PeriodEnd = now.AddDate(0, 0, cycleDays)
		account.UpdatedAt = now
		if err := uow.AccountRepository().Update(ctx, account); err != nil {
			return nil, err
		}
		delta := account.LedgerBalance() - before
		if err := recordEntry(ctx, uow, account, delta, nil, entity.LedgerReasonCreditAdjustment, "plan changed to "+req.Plan); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return dto.NewBalanceResponse(account), nil
}
