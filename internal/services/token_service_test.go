package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/models"
)

const testSigningSecret = "unit-test-signing-secret-0123456789abcdef"

func newTestTokenService(ttl time.Duration) *tokenService {
	return &tokenService{
		secret: []byte(testSigningSecret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func newTestUser() *models.User {
	return &models.User{
		ID:       uuid.New(),
		Username: "alice",
		Email:    "alice@x.com",
		Role:     models.RoleUser,
		IsActive: true,
	}
}

func TestIssueValidateRoundTrip(t *testing.T) {
	svc := newTestTokenService(time.Hour)
	user := newTestUser()

	token, err := svc.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.True(t, svc.Validate(token))

	claims, err := svc.Claims(token)
	require.NoError(t, err)
	require.Equal(t, user.Username, claims.Subject)
	require.Equal(t, user.ID.String(), claims.UserID)
	require.Equal(t, user.Email, claims.Email)
	require.Equal(t, models.RoleUser, claims.Role)

	_, err = uuid.Parse(claims.ID)
	require.NoError(t, err, "jti must be a uuid")
}

func TestDistinctTokensPerIssue(t *testing.T) {
	svc := newTestTokenService(time.Hour)
	user := newTestUser()

	first, err := svc.Issue(user)
	require.NoError(t, err)
	second, err := svc.Issue(user)
	require.NoError(t, err)

	require.NotEqual(t, first, second)

	c1, err := svc.Claims(first)
	require.NoError(t, err)
	c2, err := svc.Claims(second)
	require.NoError(t, err)
	require.NotEqual(t, c1.ID, c2.ID)
}

func TestExpiredTokenRejected(t *testing.T) {
	issuedAt := time.Unix(1700000000, 0)
	svc := newTestTokenService(time.Hour)
	svc.now = func() time.Time { return issuedAt }

	token, err := svc.Issue(newTestUser())
	require.NoError(t, err)
	require.True(t, svc.Validate(token))

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	require.False(t, svc.Validate(token))

	_, err = svc.Claims(token)
	require.Error(t, err)
}

func TestExpiryBoundaryIsInclusive(t *testing.T) {
	issuedAt := time.Unix(1700000000, 0)
	ttl := 10 * time.Minute
	svc := newTestTokenService(ttl)
	svc.now = func() time.Time { return issuedAt }

	token, err := svc.Issue(newTestUser())
	require.NoError(t, err)

	// One instant before expiry the token still works.
	svc.now = func() time.Time { return issuedAt.Add(ttl - time.Second) }
	require.True(t, svc.Validate(token))

	// Exactly at expiry it must already be dead.
	svc.now = func() time.Time { return issuedAt.Add(ttl) }
	require.False(t, svc.Validate(token))
}

func TestTamperedTokenRejected(t *testing.T) {
	svc := newTestTokenService(time.Hour)
	token, err := svc.Issue(newTestUser())
	require.NoError(t, err)

	require.False(t, svc.Validate(token+"x"))

	mutated := []byte(token)
	mid := len(mutated) / 2
	if mutated[mid] == 'a' {
		mutated[mid] = 'b'
	} else {
		mutated[mid] = 'a'
	}
	require.False(t, svc.Validate(string(mutated)))
}

func TestWrongKeyRejected(t *testing.T) {
	svc := newTestTokenService(time.Hour)
	other := &tokenService{
		secret: []byte("a-completely-different-secret"),
		ttl:    time.Hour,
		now:    time.Now,
	}

	token, err := other.Issue(newTestUser())
	require.NoError(t, err)
	require.False(t, svc.Validate(token))
}

func TestMalformedTokensRejected(t *testing.T) {
	svc := newTestTokenService(time.Hour)

	for _, bad := range []string{"", "garbage", "a.b", "a.b.c", "...."} {
		require.False(t, svc.Validate(bad), "token %q must not validate", bad)
		_, err := svc.Claims(bad)
		require.Error(t, err)
	}
}

func TestUnsignedAlgorithmRejected(t *testing.T) {
	svc := newTestTokenService(time.Hour)

	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	require.False(t, svc.Validate(token))
}
