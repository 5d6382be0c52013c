package model

import (
	"time"

	"github.com/google/uuid"
)

type ModelFile struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId           uuid.UUID `gorm:"type:uuid;not null;index"`
	OriginalFilename string    `gorm:"type:varchar(255);not null"`
	StorageBucket    string    `gorm:"type:varchar(255);not null"`
	StoragePath      string    `gorm:"type:text;not null"`
	FileSize         int64     `gorm:"not null"`
	ChecksumSHA256   string    `gorm:"type:char(64);not null"`
	Format           string    `gorm:"type:model_format;not null"`
	ModelType        *string   `gorm:"type:varchar(100)"`
	Architecture     *string   `gorm:"type:varchar(100)"`
	ParameterCount   *float64
	DownloadTokenId  *uuid.UUID `gorm:"type:uuid"`
	ExpiresAt        *time.Time `gorm:"index"`
	CreatedAt        time.Time  `gorm:"autoCreateTime"`
}

func (ModelFile) TableName() string {
	return "model_files"
}
