package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/config"
	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/models"
	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/repositories"
	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/services"
)

type gatewayFixture struct {
	users     *repositories.MemoryUserRepository
	tokens    services.TokenService
	blacklist services.TokenBlacklist
	chain     http.Handler

	// Principal captured by the terminal handler of the chain, "" when
	// the request arrived unauthenticated.
	seenUsername string
	seenRole     string
}

func newGatewayFixture() *gatewayFixture {
	f := &gatewayFixture{
		users: repositories.NewMemoryUserRepository(),
		tokens: services.NewTokenService(&config.Config{
			JWTSecret: "middleware-test-secret-0123456789",
			TokenTTL:  time.Hour,
		}),
		blacklist: services.NewMemoryBlacklist(),
	}

	terminal := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.seenUsername = AuthenticatedUsername(r)
		f.seenRole, _ = r.Context().Value(ContextKeyRole).(string)
		w.WriteHeader(http.StatusOK)
	})
	f.chain = Authenticate(f.tokens, f.blacklist, f.users)(terminal)
	return f
}

func (f *gatewayFixture) addUser(t *testing.T, username, role string, active bool) (*models.User, string) {
	t.Helper()

	user := &models.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@x.com",
		Password: "irrelevant-hash",
		Role:     role,
		IsActive: active,
	}
	require.NoError(t, f.users.Create(context.Background(), user))

	token, err := f.tokens.Issue(user)
	require.NoError(t, err)
	return user, token
}

func (f *gatewayFixture) serve(authorization string) *httptest.ResponseRecorder {
	f.seenUsername = ""
	f.seenRole = ""

	req := httptest.NewRequest(http.MethodGet, "/api/resource", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	f.chain.ServeHTTP(rec, req)
	return rec
}

func TestGatewayAttachesPrincipal(t *testing.T) {
	f := newGatewayFixture()
	_, token := f.addUser(t, "alice", models.RoleUser, true)

	rec := f.serve("Bearer " + token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "alice", f.seenUsername)
	require.Equal(t, models.RoleUser, f.seenRole)
}

func TestGatewayNeverRejects(t *testing.T) {
	f := newGatewayFixture()
	user, token := f.addUser(t, "alice", models.RoleUser, true)

	cases := []struct {
		name   string
		header string
		setup  func(t *testing.T)
	}{
		{name: "no header", header: ""},
		{name: "wrong scheme", header: "Basic abc123"},
		{name: "garbage token", header: "Bearer not.a.jwt"},
		{
			name:   "revoked token",
			header: "Bearer " + token,
			setup: func(t *testing.T) {
				claims, err := f.tokens.Claims(token)
				require.NoError(t, err)
				require.NoError(t, f.blacklist.Add(context.Background(), claims.ID, claims.ExpiresAt.Time))
			},
		},
		{
			name:   "deactivated subject",
			header: "Bearer " + token,
			setup: func(t *testing.T) {
				require.NoError(t, f.users.SetActive(context.Background(), user.ID, false))
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setup != nil {
				tc.setup(t)
			}
			rec := f.serve(tc.header)
			require.Equal(t, http.StatusOK, rec.Code, "the gateway must pass the request through")
			require.Empty(t, f.seenUsername, "no principal must be attached")
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := ExtractBearerToken(req)
	require.Error(t, err)

	req.Header.Set("Authorization", "Token abc")
	_, err = ExtractBearerToken(req)
	require.Error(t, err)

	req.Header.Set("Authorization", "Bearer ")
	_, err = ExtractBearerToken(req)
	require.Error(t, err)

	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	token, err := ExtractBearerToken(req)
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", token)
}

func TestRequireAuth(t *testing.T) {
	f := newGatewayFixture()
	_, token := f.addUser(t, "alice", models.RoleUser, true)

	guarded := Authenticate(f.tokens, f.blacklist, f.users)(RequireAuth(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	))

	req := httptest.NewRequest(http.MethodGet, "/api/resource", nil)
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "UNAUTHORIZED")

	req = httptest.NewRequest(http.MethodGet, "/api/resource", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	f := newGatewayFixture()
	_, userToken := f.addUser(t, "alice", models.RoleUser, true)
	_, adminToken := f.addUser(t, "root", models.RoleAdmin, true)

	guarded := Authenticate(f.tokens, f.blacklist, f.users)(RequireAdmin(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	))

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "FORBIDDEN")

	req = httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code, "unauthenticated requests fail closed before the role check")
}
