// FILE: internal/service/token_service.go
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"quantcloud-be/internal/dto"
	"quantcloud-be/internal/entity"
	"quantcloud-be/internal/repository/specification"
	"quantcloud-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type ITokenService interface {
	Issue(ctx context.Context, userId uuid.UUID, fileId uuid.UUID, req *dto.IssueTokenRequest) (*dto.TokenResponse, error)
	Redeem(ctx context.Context, token string) (*dto.RedeemResponse, error)
	Revoke(ctx context.Context, userId uuid.UUID, fileId uuid.UUID) error
}

type tokenService struct {
	uowFactory      unitofwork.RepositoryFactory
	s3              ObjectStorage
	defaultTTL      time.Duration
	signedURLExpiry time.Duration
}

func NewTokenService(uowFactory unitofwork.RepositoryFactory, s3 ObjectStorage, defaultTTL, signedURLExpiry time.Duration) ITokenService {
	return &tokenService{
		uowFactory:      uowFactory,
		s3:              s3,
		defaultTTL:      defaultTTL,
		signedURLExpiry: signedURLExpiry,
	}
}

// newTokenString draws 32 random bytes, hex encoded. The value is the
// whole capability: possession grants the download.
func newTokenString() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

func (s *tokenService) Issue(ctx context.Context, userId uuid.UUID, fileId uuid.UUID, req *dto.IssueTokenRequest) (*dto.TokenResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	file, err := uow.ModelFileRepository().FindOne(ctx,
		specification.ByID{ID: fileId},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if file == nil || file.Expired(now) {
		return nil, dto.ErrNotFound
	}

	ttl := s.defaultTTL
	if req != nil && req.TTLHours > 0 {
		ttl = time.Duration(req.TTLHours) * time.Hour
	}

	value, err := newTokenString()
	if err != nil {
		return nil, err
	}

	token := &entity.DownloadToken{
		Id:        uuid.New(),
		Token:     value,
		FileId:    file.Id,
		ExpiresAt: now.Add(ttl),
		SingleUse: req == nil || !req.MultiUse,
		CreatedAt: now,
	}
	if err := uow.DownloadTokenRepository().Create(ctx, token); err != nil {
		return nil, err
	}

	file.DownloadTokenId = &token.Id
	if err := uow.ModelFileRepository().Update(ctx, file); err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
		SingleUse: token.SingleUse,
	}, nil
}

// Redeem exchanges a token for a signed download URL. Failures are
// deliberately indistinguishable: a missing, expired, revoked or consumed
// token all produce the same error.
func (s *tokenService) Redeem(ctx context.Context, tokenStr string) (*dto.RedeemResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	token, err := uow.DownloadTokenRepository().FindOne(ctx, specification.Filter("token", tokenStr))
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if token == nil || !token.Usable(now) {
		return nil, dto.ErrTokenInvalid
	}

	if token.SingleUse {
		ok, err := uow.DownloadTokenRepository().Consume(ctx, token.Id, now)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Lost the race to a concurrent redemption.
			return nil, dto.ErrTokenInvalid
		}
	}

	file, err := uow.ModelFileRepository().FindOne(ctx, specification.ByID{ID: token.FileId})
	if err != nil {
		return nil, err
	}
	if file == nil || file.Expired(now) {
		return nil, dto.ErrTokenInvalid
	}

	signedUrl, err := s.s3.PresignGet(ctx, file.StoragePath, s.signedURLExpiry)
	if err != nil {
		return nil, err
	}

	return &dto.RedeemResponse{
		Filename:  file.OriginalFilename,
		FileSize:  file.FileSize,
		SignedUrl: signedUrl,
		ExpiresAt: now.Add(s.signedURLExpiry),
	}, nil
}

func (s *tokenService) Revoke(ctx context.Context, userId uuid.UUID, fileId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	file, err := uow.ModelFileRepository().FindOne(ctx,
		specification.ByID{ID: fileId},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if file == nil || file.DownloadTokenId == nil {
		return dto.ErrNotFound
	}

	return uow.DownloadTokenRepository().Revoke(ctx, *file.DownloadTokenId, time.Now())
}
