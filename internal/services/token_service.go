package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/config"
	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/models"
	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/utils"
)

// AccessClaims is the fixed claim set carried by every access token.
// Claims are signed, not encrypted: identity pointers only, no secrets.
type AccessClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies the signed access tokens. Verification
// fails closed: Validate never panics or errors, it just answers no.
type TokenService interface {
	// Issue builds a token for the principal snapshot: subject=username,
	// a fresh random jti, iat=now, exp=now+TTL, HS256 over the claims.
	Issue(user *models.User) (string, error)

	// Validate reports whether the token is well-formed, carries a valid
	// signature and has not reached its expiry. A token exactly at its
	// expiry instant is already expired.
	Validate(tokenString string) bool

	// Claims returns the verified claim set, or utils.ErrInvalidToken if
	// the token fails any structural, signature or expiry check.
	Claims(tokenString string) (*AccessClaims, error)
}

type tokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(cfg *config.Config) TokenService {
	return &tokenService{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
		now:    time.Now,
	}
}

func (s *tokenService) Issue(user *models.User) (string, error) {
	now := s.now()
	claims := AccessClaims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *tokenService) Validate(tokenString string) bool {
	_, err := s.Claims(tokenString)
	return err == nil
}

func (s *tokenService) Claims(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, utils.ErrInvalidToken
	}

	// The library accepts a token at the exact expiry instant; the
	// contract here is inclusive failure (now >= exp is expired).
	if claims.ExpiresAt == nil || !s.now().Before(claims.ExpiresAt.Time) {
		return nil, utils.ErrInvalidToken
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, utils.ErrInvalidToken
	}

	return claims, nil
}
