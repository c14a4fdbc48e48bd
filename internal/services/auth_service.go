package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/config"
	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/dtos"
	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/models"
	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/repositories"
	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/utils"
)

// AuthService orchestrates the session lifecycle: account registration,
// credential login, per-request principal resolution, logout revocation
// and token refresh.
type AuthService interface {
	Register(ctx context.Context, req dtos.RegisterRequest) (*models.User, string, error)
	Login(ctx context.Context, username, password string) (*models.User, string, error)

	// CurrentUser resolves the principal behind a token, requiring it to
	// be valid, non-revoked, and to belong to an active account.
	CurrentUser(ctx context.Context, tokenString string) (*models.User, error)

	// CheckToken is CurrentUser without the liveness requirement: the
	// subject must still resolve, active or not.
	CheckToken(ctx context.Context, tokenString string) (*models.User, error)

	// Logout revokes the token's jti for the remainder of its lifetime.
	// Revoking an already-revoked token succeeds.
	Logout(ctx context.Context, tokenString string) error

	// Refresh exchanges a still-valid token for a brand-new one (new jti,
	// new expiry). When revoke-on-refresh is configured the old jti is
	// blacklisted, enforcing single-active-token semantics.
	Refresh(ctx context.Context, tokenString string) (*models.User, string, error)
}

type authService struct {
	users           repositories.UserRepository
	tokens          TokenService
	blacklist       TokenBlacklist
	revokeOnRefresh bool
}

func NewAuthService(
	users repositories.UserRepository,
	tokens TokenService,
	blacklist TokenBlacklist,
	cfg *config.Config,
) AuthService {
	return &authService{
		users:           users,
		tokens:          tokens,
		blacklist:       blacklist,
		revokeOnRefresh: cfg.RevokeOnRefresh,
	}
}

func (s *authService) Register(ctx context.Context, req dtos.RegisterRequest) (*models.User, string, error) {
	if req.Password != req.ConfirmPassword {
		return nil, "", utils.ErrPasswordMismatch
	}

	if taken, err := s.users.ExistsByUsername(ctx, req.Username); err != nil {
		return nil, "", err
	} else if taken {
		return nil, "", utils.ErrUsernameExists
	}
	if taken, err := s.users.ExistsByEmail(ctx, req.Email); err != nil {
		return nil, "", err
	} else if taken {
		return nil, "", utils.ErrEmailExists
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		ID:       uuid.New(),
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
		Role:     models.RoleUser,
		IsActive: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	utils.Logger.Infof("Registered new user %s", user.ID)

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}
	// Absent, deactivated and wrong-password all collapse into the same
	// answer so the response does not reveal which accounts exist.
	if user == nil || !user.IsActive || !utils.CheckPasswordHash(password, user.Password) {
		return nil, "", utils.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// resolve performs the shared token checks: signature/expiry validation,
// revocation lookup, and subject resolution against the live directory.
// The embedded role/active claims are never trusted as current truth.
func (s *authService) resolve(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.tokens.Claims(tokenString)
	if err != nil {
		return nil, utils.ErrInvalidToken
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, utils.ErrInvalidToken
	}

	user, err := s.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, utils.ErrUserNotFound
	}
	return user, nil
}

func (s *authService) CurrentUser(ctx context.Context, tokenString string) (*models.User, error) {
	user, err := s.resolve(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, utils.ErrUserNotFound
	}
	return user, nil
}

func (s *authService) CheckToken(ctx context.Context, tokenString string) (*models.User, error) {
	return s.resolve(ctx, tokenString)
}

func (s *authService) Logout(ctx context.Context, tokenString string) error {
	// Logout only needs structural validity: a revoked token can still be
	// logged out again without a distinguishing error.
	claims, err := s.tokens.Claims(tokenString)
	if err != nil {
		return utils.ErrInvalidToken
	}
	return s.blacklist.Add(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (s *authService) Refresh(ctx context.Context, tokenString string) (*models.User, string, error) {
	user, err := s.resolve(ctx, tokenString)
	if err != nil {
		return nil, "", err
	}
	if !user.IsActive {
		return nil, "", utils.ErrUserNotFound
	}

	newToken, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}

	if s.revokeOnRefresh {
		claims, cErr := s.tokens.Claims(tokenString)
		if cErr == nil {
			if err := s.blacklist.Add(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
				utils.Logger.WithError(err).Warn("Failed to revoke old token on refresh")
			}
		}
	}

	return user, newToken, nil
}
