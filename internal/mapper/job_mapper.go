package mapper

import (
	"quantcloud-be/internal/entity"
	"quantcloud-be/internal/model"
)

type JobMapper struct{}

func NewJobMapper() *JobMapper {
	return &JobMapper{}
}

func (m *JobMapper) ToEntity(j *model.Job) *entity.Job {
	if j == nil {
		return nil
	}
	return &entity.Job{
		Id:             j.Id,
		UserId:         j.UserId,
		Name:           j.Name,
		Status:         entity.JobStatus(j.Status),
		Progress:       j.Progress,
		Method:         entity.QuantizationMethod(j.Method),
		InputFormat:    entity.ModelFormat(j.InputFormat),
		OutputFormat:   entity.ModelFormat(j.OutputFormat),
		InputFileId:    j.InputFileId,
		OutputFileId:   j.OutputFileId,
		ErrorMessage:   j.ErrorMessage,
		OriginalSize:   j.OriginalSize,
		QuantizedSize:  j.QuantizedSize,
		ProcessingTime: j.ProcessingTime,
		CreditsCharged: j.CreditsCharged,
		RetryOfJobId:   j.RetryOfJobId,
		CreatedAt:      j.CreatedAt,
		StartedAt:      j.StartedAt,
		CompletedAt:    j.CompletedAt,
		UpdatedAt:      j.UpdatedAt,
	}
}

func (m *JobMapper) ToEntities(jobs []*model.Job) []*entity.Job {
	entities := make([]*entity.Job, 0, len(jobs))
	for _, j := range jobs {
		entities = append(entities, m.ToEntity(j))
	}
	return entities
}

func (m *JobMapper) ToModel(j *entity.Job) *model.Job {
	if j == nil {
		return nil
	}
	return &model.Job{
		Id:             j.Id,
		UserId:         j.UserId,
		Name:           j.Name,
		Status:         string(j.Status),
		Progress:       j.Progress,
		Method:         string(j.Method),
		InputFormat:    string(j.InputFormat),
		OutputFormat:   string(j.OutputFormat),
		InputFileId:    j.InputFileId,
		OutputFileId:   j.OutputFileId,
		ErrorMessage:   j.ErrorMessage,
		OriginalSize:   j.OriginalSize,
		QuantizedSize:  j.QuantizedSize,
		ProcessingTime: j.ProcessingTime,
		CreditsCharged: j.CreditsCharged,
		RetryOfJobId:   j.RetryOfJobId,
		CreatedAt:      j.CreatedAt,
		StartedAt:      j.StartedAt,
		CompletedAt:    j.CompletedAt,
		UpdatedAt:      j.UpdatedAt,
	}
}
