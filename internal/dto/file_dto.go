// FILE: internal/dto/file_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"quantcloud-be/internal/entity"
)

type RegisterFileRequest struct {
	Filename       string   `json:"filename" validate:"required,min=1,max=255"`
	Format         string   `json:"format" validate:"required,oneof=pytorch safetensors onnx gguf"`
	Checksum       string   `json:"checksum_sha256" validate:"required,len=64,hexadecimal"`
	ModelType      *string  `json:"model_type,omitempty" validate:"omitempty,max=100"`
	Architecture   *string  `json:"architecture,omitempty" validate:"omitempty,max=100"`
	ParameterCount *float64 `json:"parameter_count,omitempty" validate:"omitempty,gt=0"`
}

type FinalizeFileRequest struct {
	Checksum string `json:"checksum_sha256" validate:"required,len=64,hexadecimal"`
}

type FileResponse struct {
	Id             uuid.UUID  `json:"id"`
	Filename       string     `json:"filename"`
	FileSize       int64      `json:"file_size"`
	ChecksumSHA256 string     `json:"checksum_sha256"`
	Format         string     `json:"format"`
	ModelType      *string    `json:"model_type,omitempty"`
	Architecture   *string    `json:"architecture,omitempty"`
	ParameterCount *float64   `json:"parameter_count,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func NewFileResponse(f *entity.ModelFile) *FileResponse {
	return &FileResponse{
		Id:             f.Id,
		Filename:       f.OriginalFilename,
		FileSize:       f.FileSize,
		ChecksumSHA256: f.ChecksumSHA256,
		Format:         string(f.Format),
		ModelType:      f.ModelType,
		Architecture:   f.Architecture,
		ParameterCount: f.ParameterCount,
		ExpiresAt:      f.ExpiresAt,
		CreatedAt:      f.CreatedAt,
	}
}

type RegisterFileResponse struct {
	File      *FileResponse `json:"file"`
	UploadUrl string        `json:"upload_url"`
}

// IssueTokenRequest mints a download token. Tokens are single-use unless
// the caller explicitly asks for a multi-use one.
type IssueTokenRequest struct {
	TTLHours int  `json:"ttl_hours" validate:"omitempty,min=1,max=168"`
	MultiUse bool `json:"multi_use"`
}

type MarkExpiringRequest struct {
	TTLHours int `json:"ttl_hours" validate:"required,min=1,max=2160"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	SingleUse bool      `json:"single_use"`
}

type RedeemResponse struct {
	Filename  string    `json:"filename"`
	FileSize  int64     `json:"file_size"`
	SignedUrl string    `json:"signed_url"`
	ExpiresAt time.Time `json:"expires_at"`
}
