package mapper

import (
	"quantcloud-be/internal/entity"
	"quantcloud-be/internal/model"
)

type AccountMapper struct{}

func NewAccountMapper() *AccountMapper {
	return &AccountMapper{}
}

func (m *AccountMapper) ToEntity(a *model.Account) *entity.Account {
	if a == nil {
		return nil
	}
	return &entity.Account{
		Id:             a.Id,
		UserId:         a.UserId,
		Plan:           entity.PlanTier(a.Plan),
		MonthlyCredits: a.MonthlyCredits,
		CreditsUsed:    a.CreditsUsed,
		PeriodStart:    a.PeriodStart,
		PeriodEnd:      a.PeriodEnd,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func (m *AccountMapper) ToModel(a *entity.Account) *model.Account {
	if a == nil {
		return nil
	}
	return &model.Account{
		Id:             a.Id,
		UserId:         a.UserId,
		Plan:           string(a.Plan),
		MonthlyCredits: a.MonthlyCredits,
		CreditsUsed:    a.CreditsUsed,
		PeriodStart:    a.PeriodStart,
		PeriodEnd:      a.PeriodEnd,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}
