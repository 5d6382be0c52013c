package model

import (
	"time"

	"github.com/google/uuid"
)

type LedgerEntry struct {
	Id           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AccountId    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Amount       int        `gorm:"not null"`
	BalanceAfter int        `gorm:"not null"`
	JobId        *uuid.UUID `gorm:"type:uuid;index:idx_ledger_job_reason,unique,where:job_id IS NOT NULL"`
	Reason       string     `gorm:"type:ledger_reason;not null;index:idx_ledger_job_reason,unique,where:job_id IS NOT NULL"`
	Description  string     `gorm:"type:text"`
	CreatedAt    time.Time  `gorm:"default:now();not null"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
