package mapper

import (
	"quantcloud-be/internal/entity"
	"quantcloud-be/internal/model"
)

type DownloadTokenMapper struct{}

func NewDownloadTokenMapper() *DownloadTokenMapper {
	return &DownloadTokenMapper{}
}

func (m *DownloadTokenMapper) ToEntity(t *model.DownloadToken) *entity.DownloadToken {
	if t == nil {
		return nil
	}
	return &entity.DownloadToken{
		Id:         t.Id,
		Token:      t.Token,
		FileId:     t.FileId,
		ExpiresAt:  t.ExpiresAt,
		SingleUse:  t.SingleUse,
		ConsumedAt: t.ConsumedAt,
		RevokedAt:  t.RevokedAt,
		CreatedAt:  t.CreatedAt,
	}
}

func (m *DownloadTokenMapper) ToModel(t *entity.DownloadToken) *model.DownloadToken {
	if t == nil {
		return nil
	}
	return &model.DownloadToken{
		Id:         t.Id,
		Token:      t.Token,
		FileId:     t.FileId,
		ExpiresAt:  t.ExpiresAt,
		SingleUse:  t.SingleUse,
		ConsumedAt: t.ConsumedAt,
		RevokedAt:  t.RevokedAt,
		CreatedAt:  t.CreatedAt,
	}
}
