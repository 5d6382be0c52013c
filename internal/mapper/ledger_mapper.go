package mapper

import (
	"quantcloud-be/internal/entity"
	"quantcloud-be/internal/model"
)

type LedgerMapper struct{}

func NewLedgerMapper() *LedgerMapper {
	return &LedgerMapper{}
}

func (m *LedgerMapper) ToEntity(e *model.LedgerEntry) *entity.LedgerEntry {
	if e == nil {
		return nil
	}
	return &entity.LedgerEntry{
		Id:           e.Id,
		AccountId:    e.AccountId,
		Amount:       e.Amount,
		BalanceAfter: e.BalanceAfter,
		JobId:        e.JobId,
		Reason:       entity.LedgerReason(e.Reason),
		Description:  e.Description,
		CreatedAt:    e.CreatedAt,
	}
}

func (m *LedgerMapper) ToEntities(entries []*model.LedgerEntry) []*entity.LedgerEntry {
	entities := make([]*entity.LedgerEntry, 0, len(entries))
	for _, e := range entries {
		entities = append(entities, m.ToEntity(e))
	}
	return entities
}

func (m *LedgerMapper) ToModel(e *entity.LedgerEntry) *model.LedgerEntry {
	if e == nil {
		return nil
	}
	return &model.LedgerEntry{
		Id:           e.Id,
		AccountId:    e.AccountId,
		Amount:       e.Amount,
		BalanceAfter: e.BalanceAfter,
		JobId:        e.JobId,
		Reason:       string(e.Reason),
		Description:  e.Description,
		CreatedAt:    e.CreatedAt,
	}
}
