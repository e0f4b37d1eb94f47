package auth

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
	"storefront/internal/usecase"
)

type SeedAdminInput struct {
	Email    string
	Password string
	FullName string
}

// 起動時に設定された管理者を用意する。
// 既にいる場合は何もしない（一般ユーザーの昇格もしない）
type SeedAdminUsecase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
}

func NewSeedAdminUsecase(userRepo repository.UserRepository, hasher PasswordHasher) *SeedAdminUsecase {
	return &SeedAdminUsecase{userRepo: userRepo, hasher: hasher}
}

// 戻り値は (作成したユーザー, 作成したか)
func (u *SeedAdminUsecase) Execute(ctx context.Context, in SeedAdminInput) (model.User, bool, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return model.User{}, false, ErrMissingCredentials
	}

	existing, err := u.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return *existing, false, nil
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, false, usecase.Internal(err)
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, false, usecase.Internal(err)
	}

	admin := &model.User{
		Email:        email,
		PasswordHash: hashed,
		FullName:     strings.TrimSpace(in.FullName),
		Role:         model.RoleAdmin,
	}
	if err := u.userRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.User{}, false, nil
		}
		return model.User{}, false, usecase.Internal(err)
	}
	return *admin, true, nil
}
