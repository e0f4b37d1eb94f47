package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var ErrInvalidToken = usecase.Unauthenticated("unauthorized")

// トークンのペイロード {id, email, role}
type accessClaims struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// HS256で署名・検証する
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	newID  func() string
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, newID: uuid.NewString}
}

func (i *JWTIssuer) Issue(user model.User, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.ttl)

	claims := accessClaims{
		ID:    user.ID,
		Email: user.Email,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        i.newID(),
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// 署名・期限・必須クレームを確認して利用者情報を返す。DBは見ない
func (i *JWTIssuer) Verify(raw string) (model.Identity, error) {
	var claims accessClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return model.Identity{}, ErrInvalidToken
	}

	// exp無しのトークンは受け付けない
	if claims.ExpiresAt == nil || claims.ID <= 0 {
		return model.Identity{}, ErrInvalidToken
	}

	role := model.Role(claims.Role)
	if role != model.RoleUser && role != model.RoleAdmin {
		return model.Identity{}, ErrInvalidToken
	}

	return model.Identity{
		UserID: claims.ID,
		Email:  claims.Email,
		Role:   role,
	}, nil
}
