package service

import (
	"context"
	"testing"
	"time"

	"quantcloud-be/internal/dto"
	"quantcloud-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBalanceCreatesFreeAccount(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()

	svc := NewLedgerService(newMemFactory(store))

	res, err := svc.GetBalance(context.Background(), userId)
	require.NoError(t, err)
	assert.Equal(t, "free", res.Plan)
	assert.Equal(t, 1, res.Credits)
	assert.False(t, res.Unlimited)
	require.Len(t, store.accounts, 1)

	// A second call reuses the same account.
	_, err = svc.GetBalance(context.Background(), userId)
	require.NoError(t, err)
	assert.Len(t, store.accounts, 1)
}

func TestGetBalanceResetsElapsedCycle(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()
	account := seedAccount(store, userId, entity.PlanStarter)
	account.CreditsUsed = 7
	account.PeriodStart = time.Now().AddDate(0, 0, -40)
	account.PeriodEnd = time.Now().AddDate(0, 0, -10)
	store.accounts[account.Id] = *account

	svc := NewLedgerService(newMemFactory(store))

	res, err := svc.GetBalance(context.Background(), userId)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Credits)
	assert.True(t, res.CycleEnds.After(time.Now()))

	for _, a := range store.accounts {
		assert.Equal(t, 0, a.CreditsUsed)
	}
	require.Len(t, store.ledger, 1)
	assert.Equal(t, 7, store.ledger[0].Amount)
	assert.Equal(t, entity.LedgerReasonCreditReset, store.ledger[0].Reason)
}

func TestChangePlanOpensFreshCycle(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()
	account := seedAccount(store, userId, entity.PlanFree)
	account.CreditsUsed = 1
	store.accounts[account.Id] = *account

	svc := NewLedgerService(newMemFactory(store))

	res, err := svc.ChangePlan(context.Background(), userId, &dto.ChangePlanRequest{Plan: "pro"})
	require.NoError(t, err)
	assert.Equal(t, "pro", res.Plan)
	assert.True(t, res.Unlimited)
	assert.Equal(t, -1, res.Credits)

	for _, a := range store.accounts {
		assert.Equal(t, entity.PlanPro, a.Plan)
		assert.Equal(t, 0, a.CreditsUsed)
		assert.Equal(t, -1, a.MonthlyCredits)
	}
	require.Len(t, store.ledger, 1)
	adjustment := store.ledger[0]
	assert.Equal(t, entity.LedgerReasonCreditAdjustment, adjustment.Reason)
	// Free had 0 of 1 left, pro opens at 0: the adjustment carries the
	// delta so the snapshot chain replays.
	assert.Equal(t, 0, adjustment.Amount)
	assert.Equal(t, 0, adjustment.BalanceAfter)
}

func TestUpgradeAdjustmentCarriesBalanceDelta(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()
	account := seedAccount(store, userId, entity.PlanFree)
	store.accounts[account.Id] = *account

	svc := NewLedgerService(newMemFactory(store))

	res, err := svc.ChangePlan(context.Background(), userId, &dto.ChangePlanRequest{Plan: "starter"})
	require.NoError(t, err)
	assert.Equal(t, 10, res.Credits)

	require.Len(t, store.ledger, 1)
	assert.Equal(t, 9, store.ledger[0].Amount)
	assert.Equal(t, 10, store.ledger[0].BalanceAfter)
}

func TestChangePlanToSamePlanIsNoOp(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()
	account := seedAccount(store, userId, entity.PlanStarter)
	account.CreditsUsed = 4
	store.accounts[account.Id] = *account

	svc := NewLedgerService(newMemFactory(store))

	res, err := svc.ChangePlan(context.Background(), userId, &dto.ChangePlanRequest{Plan: "starter"})
	require.NoError(t, err)
	assert.Equal(t, 6, res.Credits)

	// No cycle reset, no ledger noise.
	for _, a := range store.accounts {
		assert.Equal(t, 4, a.CreditsUsed)
	}
	assert.Empty(t, store.ledger)
}

// Replaying the ledger from the opening balance must reproduce every
// recorded snapshot, across debits, refunds, cycle resets, plan changes
// and unlimited-plan usage.
func TestLedgerReplayReproducesSnapshots(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()
	account := seedAccount(store, userId, entity.PlanStarter)
	params := 7.0
	file := seedFile(store, userId, entity.FormatSafetensors, 1000, &params)

	jobs := NewJobService(newMemFactory(store), nil)
	ledger := NewLedgerService(newMemFactory(store))

	submit := func() *dto.JobResponse {
		res, err := jobs.Submit(context.Background(), userId, &dto.SubmitJobRequest{
			Name:         "replay",
			InputFileId:  file.Id.String(),
			Method:       "gptq",
			OutputFormat: "safetensors",
		})
		require.NoError(t, err)
		return res
	}

	submit()
	cancelled := submit()
	_, err := jobs.Cancel(context.Background(), userId, cancelled.Id)
	require.NoError(t, err)

	// Push the cycle into the past so the next balance read resets it.
	stored := store.accounts[account.Id]
	stored.PeriodStart = time.Now().AddDate(0, 0, -40)
	stored.PeriodEnd = time.Now().AddDate(0, 0, -10)
	store.accounts[account.Id] = stored
	_, err = ledger.GetBalance(context.Background(), userId)
	require.NoError(t, err)

	_, err = ledger.ChangePlan(context.Background(), userId, &dto.ChangePlanRequest{Plan: "pro"})
	require.NoError(t, err)
	submit()

	require.Len(t, store.ledger, 6)

	// Opening balance of a fresh starter account.
	running := entity.PlanStarter.MonthlyCredits()
	for i, e := range store.ledger {
		running += e.Amount
		assert.Equal(t, running, e.BalanceAfter, "entry %d (%s)", i, e.Reason)
	}
	// Unlimited usage surfaces as a negative running balance.
	assert.Equal(t, -2, store.ledger[5].BalanceAfter)
}

func TestGetHistoryNewestFirst(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()
	account := seedAccount(store, userId, entity.PlanStarter)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		store.ledger = append(store.ledger, entity.LedgerEntry{
			Id:        uuid.New(),
			AccountId: account.Id,
			Amount:    -(i + 1),
			Reason:    entity.LedgerReasonDebitJobStart,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	// Entries of another account stay invisible.
	store.ledger = append(store.ledger, entity.LedgerEntry{
		Id:        uuid.New(),
		AccountId: uuid.New(),
		Amount:    -9,
		Reason:    entity.LedgerReasonDebitJobStart,
		CreatedAt: base,
	})

	svc := NewLedgerService(newMemFactory(store))

	entries, err := svc.GetHistory(context.Background(), userId, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, -3, entries[0].Amount)
	assert.Equal(t, -1, entries[2].Amount)
}

func TestGetHistoryWithoutAccount(t *testing.T) {
	store := newMemStore()
	svc := NewLedgerService(newMemFactory(store))

	entries, err := svc.GetHistory(context.Background(), uuid.New(), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
