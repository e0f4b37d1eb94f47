package auth

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
	"storefront/internal/usecase"
)

// 会員登録の入力
type RegisterUserInput struct {
	Email    string
	Password string
	FullName string
}

// 会員登録の出力
type RegisterUserOutput struct {
	User model.User
}

var (
	// 入力が不正
	ErrMissingCredentials = usecase.InvalidInput("email and password required")

	// 競合
	ErrEmailAlreadyExists = usecase.Conflict("email already exists")
)

// RegisterUserUsecaseは会員登録の処理。
type RegisterUserUsecase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
}

// DI
func NewRegisterUserUsecase(userRepo repository.UserRepository, hasher PasswordHasher) *RegisterUserUsecase {
	return &RegisterUserUsecase{userRepo: userRepo, hasher: hasher}
}

// 会員登録実行
func (u *RegisterUserUsecase) Execute(ctx context.Context, in RegisterUserInput) (RegisterUserOutput, error) {
	var out RegisterUserOutput

	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return out, ErrMissingCredentials
	}

	// email重複チェック
	existing, err := u.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return out, ErrEmailAlreadyExists
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return out, usecase.Internal(err)
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return out, usecase.Internal(err)
	}

	// ロールは常に user（公開APIから admin にはできない）
	user := &model.User{
		Email:        email,
		PasswordHash: hashed,
		FullName:     strings.TrimSpace(in.FullName),
		Role:         model.RoleUser,
	}

	// 同時登録はDBの一意制約で弾く
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return out, ErrEmailAlreadyExists
		}
		return out, usecase.Internal(err)
	}

	safeUser := *user
	safeUser.PasswordHash = ""
	out.User = safeUser
	return out, nil
}
