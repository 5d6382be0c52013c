package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"quantcloud-be/internal/dto"
	"quantcloud-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitDebitsCredits(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()
	seedAccount(store, userId, entity.PlanStarter)
	params := 7.0
	file := seedFile(store, userId, entity.FormatSafetensors, 14_000_000_000, &params)

	svc := NewJobService(newMemFactory(store), nil)

	res, err := svc.Submit(context.Background(), userId, &dto.SubmitJobRequest{
		Name:         "llama quant",
		InputFileId:  file.Id.String(),
		Method:       "gptq",
		OutputFormat: "safetensors",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", res.Status)
	assert.Equal(t, 2, res.CreditsCharged)

	for _, a := range store.accounts {
		assert.Equal(t, 2, a.CreditsUsed)
	}
	require.Len(t, store.ledger, 1)
	entry := store.ledger[0]
	assert.Equal(t, -2, entry.Amount)
	assert.Equal(t, entity.LedgerReasonDebitJobStart, entry.Reason)
	require.NotNil(t, entry.JobId)
	assert.Equal(t, res.Id, *entry.JobId)
	assert.Equal(t, 8, entry.BalanceAfter)
}

func TestSubmitCreatesFreeAccountOnFirstTouch(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()
	file := seedFile(store, userId, entity.FormatOnnx, 1000, nil)

	svc := NewJobService(newMemFactory(store), nil)

	_, err := svc.Submit(context.Background(), userId, &dto.SubmitJobRequest{
		Name:         "first job",
		InputFileId:  file.Id.String(),
		Method:       "int8",
		OutputFormat: "onnx",
	})
	require.NoError(t, err)
	require.Len(t, store.accounts, 1)
	for _, a := range store.accounts {
		assert.Equal(t, entity.PlanFree, a.Plan)
		assert.Equal(t, 1, a.CreditsUsed)
	}

	// The free allotment is spent: the next submit must be rejected.
	_, err = svc.Submit(context.Background(), userId, &dto.SubmitJobRequest{
		Name:         "second job",
		InputFileId:  file.Id.String(),
		Method:       "int8",
		OutputFormat: "onnx",
	})
	var insufficient *dto.InsufficientCreditError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 1, insufficient.Required)
	assert.Equal(t, 0, insufficient.Available)
}

func TestSubmitRejectsIncompatibleCombination(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()
	seedAccount(store, userId, entity.PlanPro)
	file := seedFile(store, userId, entity.FormatOnnx, 1000, nil)

	svc := NewJobService(newMemFactory(store), nil)

	_, err := svc.Submit(context.Background(), userId, &dto.SubmitJobRequest{
		Name:         "bad combo",
		InputFileId:  file.Id.String(),
		Method:       "gptq",
		OutputFormat: "safetensors",
	})
	var combo *dto.InvalidCombinationError
	require.ErrorAs(t, err, &combo)
	assert.Equal(t, entity.FormatOnnx, combo.InputFormat)

	// Nothing was charged and no job was stored.
	assert.Empty(t, store.ledger)
	assert.Empty(t, store.jobs)
}

func TestSubmitRejectsForeignFile(t *testing.T) {
	store := newMemStore()
	owner := uuid.New()
	file := seedFile(store, owner, entity.FormatOnnx, 1000, nil)

	svc := NewJobService(newMemFactory(store), nil)

	_, err := svc.Submit(context.Background(), uuid.New(), &dto.SubmitJobRequest{
		Name:         "not mine",
		InputFileId:  file.Id.String(),
		Method:       "int8",
		OutputFormat: "onnx",
	})
	assert.ErrorIs(t, err, dto.ErrNotFound)
}

func TestSubmitUnlimitedPlanStillLedgered(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()
	seedAccount(store, userId, entity.PlanPro)
	params := 120.0
	file := seedFile(store, userId, entity.FormatPyTorch, 1000, &params)

	svc := NewJobService(newMemFactory(store), nil)

	res, err := svc.Submit(context.Background(), userId, &dto.SubmitJobRequest{
		Name:         "huge model",
		InputFileId:  file.Id.String(),
		Method:       "awq",
		OutputFormat: "pytorch",
	})
	require.NoError(t, err)
	assert.Equal(t, 6, res.CreditsCharged) // base 2 x size factor 3

	// Pro usage never blocks a submit but is still metered, so the
	// entry chain replays cleanly.
	for _, a := range store.accounts {
		assert.Equal(t, 6, a.CreditsUsed)
	}
	require.Len(t, store.ledger, 1)
	assert.Equal(t, -6, store.ledger[0].Amount)
	assert.Equal(t, -6, store.ledger[0].BalanceAfter)
}

func TestSubmitInsufficientCreditLeavesNoJobRow(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()
	account := seedAccount(store, userId, entity.PlanStarter)
	account.CreditsUsed = account.MonthlyCredits
	store.accounts[account.Id] = *account
	params := 7.0
	file := seedFile(store, userId, entity.FormatSafetensors, 1000, &params)

	svc := NewJobService(newMemFactory(store), nil)

	_, err := svc.Submit(context.Background(), userId, &dto.SubmitJobRequest{
		Name:         "over budget",
		InputFileId:  file.Id.String(),
		Method:       "gptq",
		OutputFormat: "safetensors",
	})
	var insufficient *dto.InsufficientCreditError
	require.ErrorAs(t, err, &insufficient)

	// The rejection happens before anything is written.
	assert.Empty(t, store.jobs)
	assert.Empty(t, store.ledger)
}

func TestCancelRefundsExactlyOnce(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()
	account := seedAccount(store, userId, entity.PlanStarter)
	account.CreditsUsed = 2
	store.accounts[account.Id] = *account
	file := seedFile(store, userId, entity.FormatSafetensors, 1000, nil)
	job := seedPendingJob(store, userId, file, entity.MethodGptq, entity.FormatSafetensors, 2, time.Now())

	svc := NewJobService(newMemFactory(store), nil)

	res, err := svc.Cancel(context.Background(), userId, job.Id)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", res.Status)

	for _, a := range store.accounts {
		assert.Equal(t, 0, a.CreditsUsed)
	}
	require.Len(t, store.ledger, 1)
	assert.Equal(t, 2, store.ledger[0].Amount)
	assert.Equal(t, entity.LedgerReasonCreditRefund, store.ledger[0].Reason)

	// A second cancel is an invalid transition and must not refund again.
	_, err = svc.Cancel(context.Background(), userId, job.Id)
	var transition *entity.InvalidTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Len(t, store.ledger, 1)
}

func TestCancelForeignJobNotFound(t *testing.T) {
	store := newMemStore()
	owner := uuid.New()
	file := seedFile(store, owner, entity.FormatOnnx, 1000, nil)
	job := seedPendingJob(store, owner, file, entity.MethodInt8, entity.FormatOnnx, 1, time.Now())

	svc := NewJobService(newMemFactory(store), nil)

	_, err := svc.Cancel(context.Background(), uuid.New(), job.Id)
	assert.ErrorIs(t, err, dto.ErrNotFound)
}

func TestResubmitOnlyFromFailed(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()
	seedAccount(store, userId, entity.PlanStarter)
	file := seedFile(store, userId, entity.FormatSafetensors, 1000, nil)
	job := seedPendingJob(store, userId, file, entity.MethodGptq, entity.FormatSafetensors, 2, time.Now())

	svc := NewJobService(newMemFactory(store), nil)

	_, err := svc.Resubmit(context.Background(), userId, job.Id, nil)
	var transition *entity.InvalidTransitionError
	require.ErrorAs(t, err, &transition)

	// Fail the job, then the retry goes through and links back.
	failed := store.jobs[job.Id]
	failed.Status = entity.JobStatusFailed
	store.jobs[job.Id] = failed

	res, err := svc.Resubmit(context.Background(), userId, job.Id, &dto.ResubmitJobRequest{Name: "retry"})
	require.NoError(t, err)
	assert.Equal(t, "pending", res.Status)
	assert.Equal(t, "retry", res.Name)
	require.NotNil(t, res.RetryOfJobId)
	assert.Equal(t, job.Id, *res.RetryOfJobId)
}

func TestStatsCountsPerStatus(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()
	file := seedFile(store, userId, entity.FormatOnnx, 1000, nil)

	now := time.Now()
	for i, status := range []entity.JobStatus{
		entity.JobStatusPending,
		entity.JobStatusPending,
		entity.JobStatusProcessing,
		entity.JobStatusCompleted,
		entity.JobStatusFailed,
	} {
		j := seedPendingJob(store, userId, file, entity.MethodInt8, entity.FormatOnnx, 1, now.Add(time.Duration(i)*time.Second))
		stored := store.jobs[j.Id]
		stored.Status = status
		store.jobs[j.Id] = stored
	}
	// Another user's jobs stay out of the stats.
	other := uuid.New()
	otherFile := seedFile(store, other, entity.FormatOnnx, 1000, nil)
	seedPendingJob(store, other, otherFile, entity.MethodInt8, entity.FormatOnnx, 1, now)

	svc := NewJobService(newMemFactory(store), nil)

	stats, err := svc.Stats(context.Background(), userId)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.Total)
	assert.Equal(t, int64(2), stats.Pending)
	assert.Equal(t, int64(1), stats.Processing)
	assert.Equal(t, int64(1), stats.Completed)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(0), stats.Cancelled)
}

func TestEstimateCost(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()
	params := 30.0
	file := seedFile(store, userId, entity.FormatPyTorch, 1000, &params)

	svc := NewJobService(newMemFactory(store), nil)

	res, err := svc.EstimateCost(context.Background(), userId, file.Id, "awq")
	require.NoError(t, err)
	assert.Equal(t, 2, res.BaseCost)
	assert.Equal(t, 2, res.SizeMultiplier)
	assert.Equal(t, 4, res.TotalCost)
}

func TestUpdateProgressAfterCancelIsSilent(t *testing.T) {
	store := newMemStore()
	userId := uuid.New()
	file := seedFile(store, userId, entity.FormatOnnx, 1000, nil)
	job := seedPendingJob(store, userId, file, entity.MethodInt8, entity.FormatOnnx, 1, time.Now())

	stored := store.jobs[job.Id]
	stored.Status = entity.JobStatusCancelled
	store.jobs[job.Id] = stored

	svc := NewJobService(newMemFactory(store), nil)

	// A late report against a cancelled job is swallowed, not an error.
	err := svc.UpdateProgress(context.Background(), job.Id, 75)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusCancelled, store.jobs[job.Id].Status)

	err = svc.UpdateProgress(context.Background(), uuid.New(), 50)
	assert.True(t, errors.Is(err, dto.ErrNotFound))
}
