// FILE: internal/dto/billing_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"quantcloud-be/internal/entity"
)

type BalanceResponse struct {
	Plan      string    `json:"plan"`
	Credits   int       `json:"credits"`
	Unlimited bool      `json:"unlimited"`
	CycleEnds time.Time `json:"cycle_ends"`
}

func NewBalanceResponse(a *entity.Account) *BalanceResponse {
	return &BalanceResponse{
		Plan:      string(a.Plan),
		Credits:   a.Balance(),
		Unlimited: a.Plan.Unlimited(),
		CycleEnds: a.PeriodEnd,
	}
}

type LedgerEntryResponse struct {
	Id           uuid.UUID  `json:"id"`
	Amount       int        `json:"amount"`
	BalanceAfter int        `json:"balance_after"`
	JobId        *uuid.UUID `json:"job_id,omitempty"`
	Reason       string     `json:"reason"`
	Description  string     `json:"description"`
	CreatedAt    time.Time  `json:"created_at"`
}

func NewLedgerEntryResponse(e *entity.LedgerEntry) *LedgerEntryResponse {
	return &LedgerEntryResponse{
		Id:           e.Id,
		Amount:       e.Amount,
		BalanceAfter: e.BalanceAfter,
		JobId:        e.JobId,
		Reason:       string(e.Reason),
		Description:  e.Description,
		CreatedAt:    e.CreatedAt,
	}
}

type ChangePlanRequest struct {
	Plan string `json:"plan" validate:"required,oneof=free starter pro"`
}

type CostEstimateResponse struct {
	Method         string `json:"method"`
	BaseCost       int    `json:"base_cost"`
	SizeMultiplier int    `json:"size_multiplier"`
	TotalCost      int    `json:"total_cost"`
}
