// FILE: internal/entity/account_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type PlanTier string

const (
	PlanFree    PlanTier = "free"
	PlanStarter PlanTier = "starter"
	PlanPro     PlanTier = "pro"
)

// Unlimited reports whether the tier bypasses balance checks.
// Pro jobs are still recorded in the ledger for auditing.
func (p PlanTier) Unlimited() bool {
	return p == PlanPro
}

// MonthlyCredits returns the allotment credited at each cycle reset.
// -1 means unlimited.
func (p PlanTier) MonthlyCredits() int {
	switch p {
	case PlanStarter:
		return 10
	case PlanPro:
		return -1
	default:
		return 1
	}
}

// RetentionDays is how long produced files are kept before the reaper
// purges them.
func (p PlanTier) RetentionDays() int {
	switch p {
	case PlanStarter:
		return 30
	case PlanPro:
		return 90
	default:
		return 7
	}
}

func (p PlanTier) QueuePriority() int {
	switch p {
	case PlanStarter:
		return 2
	case PlanPro:
		return 3
	default:
		return 1
	}
}

// Account is the credit balance holder for one user. Exactly one active
// account exists per user.
type Account struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	Plan           PlanTier
	MonthlyCredits int
	CreditsUsed    int
	PeriodStart    time.Time
	PeriodEnd      time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Balance is the remaining credits for the current cycle. Unlimited plans
// report -1.
func (a *Account) Balance() int {
	if a.Plan.Unlimited() {
		return -1
	}
	return a.MonthlyCredits - a.CreditsUsed
}

// LedgerBalance is the balance snapshot recorded on ledger entries.
// Unlimited plans carry an allotment of zero here, so their audited usage
// shows up as a negative running balance and replaying entries always
// reproduces the latest snapshot.
func (a *Account) LedgerBalance() int {
	if a.Plan.Unlimited() {
		return -a.CreditsUsed
	}
	return a.MonthlyCredits - a.CreditsUsed
}

// CanAfford reports whether a reservation of amount would keep the balance
// non-negative.
func (a *Account) CanAfford(amount int) bool {
	if a.Plan.Unlimited() {
		return true
	}
	return a.MonthlyCredits-a.CreditsUsed-amount >= 0
}

// CycleElapsed reports whether the billing window has rolled past now.
func (a *Account) CycleElapsed(now time.Time) bool {
	return !now.Before(a.PeriodEnd)
}
