// FILE: internal/entity/ledger_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type LedgerReason string

const (
	LedgerReasonDebitJobStart    LedgerReason = "debit_job_start"
	LedgerReasonCreditRefund     LedgerReason = "credit_refund"
	LedgerReasonCreditReset      LedgerReason = "credit_reset"
	LedgerReasonCreditAdjustment LedgerReason = "credit_adjustment"
)

// LedgerEntry is one immutable credit movement. Entries are append-only:
// they are never updated or deleted, and replaying them in creation order
// must reproduce the latest BalanceAfter.
type LedgerEntry struct {
	Id           uuid.UUID
	AccountId    uuid.UUID
	Amount       int // signed; negative = debit
	BalanceAfter int
	JobId        *uuid.UUID
	Reason       LedgerReason
	Description  string
	CreatedAt    time.Time
}
