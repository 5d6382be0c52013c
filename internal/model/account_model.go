package model

import (
	"time"

	"github.com/google/uuid"
)

type Account struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Plan           string    `gorm:"type:plan_tier;not null;default:'free'"`
	MonthlyCredits int       `gorm:"not null;default:1"`
	CreditsUsed    int       `gorm:"not null;default:0"`
	PeriodStart    time.Time `gorm:"not null"`
	PeriodEnd      time.Time `gorm:"not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (Account) TableName() string {
	return "accounts"
}
