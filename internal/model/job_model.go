package model

import (
	"time"

	"github.com/google/uuid"
)

type Job struct {
	Id             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID  `gorm:"type:uuid;not null;index"`
	Name           string     `gorm:"type:varchar(100);not null"`
	Status         string     `gorm:"type:job_status;not null;index;default:'pending'"`
	Progress       int        `gorm:"not null;default:0"`
	Method         string     `gorm:"type:quantization_method;not null"`
	InputFormat    string     `gorm:"type:model_format;not null"`
	OutputFormat   string     `gorm:"type:model_format;not null"`
	InputFileId    uuid.UUID  `gorm:"type:uuid;not null;index"`
	OutputFileId   *uuid.UUID `gorm:"type:uuid"`
	ErrorMessage   *string    `gorm:"type:text"`
	OriginalSize   int64      `gorm:"not null;default:0"`
	QuantizedSize  *int64
	ProcessingTime *int
	CreditsCharged int        `gorm:"not null;default:0"`
	RetryOfJobId   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time  `gorm:"autoCreateTime;index"`
	StartedAt      *time.Time
	CompletedAt    *time.Time
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (Job) TableName() string {
	return "jobs"
}
