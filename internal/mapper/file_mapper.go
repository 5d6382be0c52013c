package mapper

import (
	"quantcloud-be/internal/entity"
	"quantcloud-be/internal/model"
)

type ModelFileMapper struct{}

func NewModelFileMapper() *ModelFileMapper {
	return &ModelFileMapper{}
}

func (m *ModelFileMapper) ToEntity(f *model.ModelFile) *entity.ModelFile {
	if f == nil {
		return nil
	}
	return &entity.ModelFile{
		Id:               f.Id,
		UserId:           f.UserId,
		OriginalFilename: f.OriginalFilename,
		StorageBucket:    f.StorageBucket,
		StoragePath:      f.StoragePath,
		FileSize:         f.FileSize,
		ChecksumSHA256:   f.ChecksumSHA256,
		Format:           entity.ModelFormat(f.Format),
		ModelType:        f.ModelType,
		Architecture:     f.Architecture,
		ParameterCount:   f.ParameterCount,
		DownloadTokenId:  f.DownloadTokenId,
		ExpiresAt:        f.ExpiresAt,
		CreatedAt:        f.CreatedAt,
	}
}

func (m *ModelFileMapper) ToEntities(files []*model.ModelFile) []*entity.ModelFile {
	entities := make([]*entity.ModelFile, 0, len(files))
	for _, f := range files {
		entities = append(entities, m.ToEntity(f))
	}
	return entities
}

func (m *ModelFileMapper) ToModel(f *entity.ModelFile) *model.ModelFile {
	if f == nil {
		return nil
	}
	return &model.ModelFile{
		Id:               f.Id,
		UserId:           f.UserId,
		OriginalFilename: f.OriginalFilename,
		StorageBucket:    f.StorageBucket,
		StoragePath:      f.StoragePath,
		FileSize:         f.FileSize,
		ChecksumSHA256:   f.ChecksumSHA256,
		Format:           string(f.Format),
		ModelType:        f.ModelType,
		Architecture:     f.Architecture,
		ParameterCount:   f.ParameterCount,
		DownloadTokenId:  f.DownloadTokenId,
		ExpiresAt:        f.ExpiresAt,
		CreatedAt:        f.CreatedAt,
	}
}
