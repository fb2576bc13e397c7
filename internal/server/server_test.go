package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/carrot/internal/auth"
	"github.com/hongminglow/carrot/internal/config"
	"github.com/hongminglow/carrot/internal/http/respond"
	"github.com/hongminglow/carrot/internal/metrics"
	"github.com/hongminglow/carrot/internal/models"
	"github.com/hongminglow/carrot/internal/models/dto"
	"github.com/hongminglow/carrot/internal/server"
	"github.com/hongminglow/carrot/internal/storage/gormstore"
)

const (
	testSecret   = "server-test-secret-0123456789-abcdefghijklmnop"
	seedUsername = "giveMeRandomString"
	seedEmail    = "random@example.com"
	seedPassword = "giveMeRandomPassword"
)

type testEnv struct {
	cfg     config.Config
	deps    server.Deps
	handler http.Handler
	seed    auth.Principal
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	store, err := gormstore.OpenMemory(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := config.Default()
	cfg.JWT.Secret = testSecret
	cfg.JWT.ExpirationMs = int64(time.Hour / time.Millisecond)

	deps := server.NewDeps(cfg, store, metrics.New(prometheus.NewRegistry()))
	require.NoError(t, deps.Verifier.EnsureDefaultRole(ctx))

	seed, err := deps.Verifier.Register(ctx, auth.SignUp{
		Name:     "Random Person",
		Username: seedUsername,
		Email:    seedEmail,
		Password: seedPassword,
	})
	require.NoError(t, err)

	return &testEnv{cfg: cfg, deps: deps, handler: server.NewRouter(cfg, deps), seed: seed}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, identifier, password string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/signin", "", dto.SignInRequest{UsernameOrEmail: identifier, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp dto.TokenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.AccessToken
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out), rec.Body.String())
	return out
}

func TestSignIn(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/signin", "", dto.SignInRequest{UsernameOrEmail: seedUsername, Password: seedPassword})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[dto.TokenResponse](t, rec)
	assert.Equal(t, "Bearer", resp.TokenType)
	require.NotEmpty(t, resp.AccessToken)

	id, err := env.deps.Tokens.Validate(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, env.seed.ID, id)
}

func TestSignIn_ByEmail(t *testing.T) {
	env := newTestEnv(t)
	assert.NotEmpty(t, env.login(t, seedEmail, seedPassword))
}

func TestSignIn_BadCredentials(t *testing.T) {
	env := newTestEnv(t)

	for name, req := range map[string]dto.SignInRequest{
		"wrong password": {UsernameOrEmail: seedUsername, Password: "nope"},
		"unknown user":   {UsernameOrEmail: "someoneElse", Password: seedPassword},
	} {
		t.Run(name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/signin", "", req)
			assert.Equal(t, http.StatusNotFound, rec.Code)

			body := decodeBody[dto.ErrorResponse](t, rec)
			assert.False(t, body.Success)
			assert.Equal(t, "Bad credentials", body.Message)
		})
	}
}

func TestSignIn_Validation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/signin", "", map[string]string{"usernameOrEmail": seedUsername})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Form validation failed", decodeBody[dto.ErrorResponse](t, rec).Message)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/users", "/api/users/me", "/api/barns", "/api/does-not-exist"} {
		t.Run(path, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			body := decodeBody[dto.ErrorResponse](t, rec)
			assert.False(t, body.Success)
			assert.Equal(t, respond.UnauthorizedMessage, body.Message)
		})
	}
}

func TestGarbageTokenOnPublicRoute(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/signin", "not-a-jwt", dto.SignInRequest{UsernameOrEmail: seedUsername, Password: seedPassword})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExpiredToken(t *testing.T) {
	env := newTestEnv(t)

	past := auth.NewTokenManager(testSecret, env.cfg.JWT.Issuer, time.Hour,
		auth.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }))
	token, err := past.Generate(env.seed.ID)
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCurrentUser(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, seedUsername, seedPassword)

	rec := env.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeBody[dto.UserSummary](t, rec)

	resolved, err := env.deps.Resolver.ResolveByID(context.Background(), me.ID)
	require.NoError(t, err)
	assert.Equal(t, env.seed.ID, me.ID)
	assert.Equal(t, resolved.Username, me.Username)
	assert.Equal(t, "Random Person", me.Name)

	rec = env.do(t, http.MethodGet, "/api/users/myprofile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decodeBody[dto.UserProfile](t, rec)
	assert.Equal(t, seedEmail, profile.Email)
	assert.False(t, profile.JoinedAt.IsZero())
}

func TestSignUp(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/signup", "", dto.SignUpRequest{
		Name: "New Person", UserName: "newbie", Email: "newbie@example.com", Password: "secret",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody[dto.APIResponse](t, rec)
	assert.True(t, body.Success)
	assert.Equal(t, "User registered successfully", body.Message)

	principal, err := env.deps.Resolver.ResolveByLoginOrEmail(context.Background(), "newbie")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("/api/users/%d", principal.ID), rec.Header().Get("Location"))
	assert.Equal(t, []string{models.RoleStaff}, principal.Authorities)

	assert.NotEmpty(t, env.login(t, "newbie@example.com", "secret"))
}

func TestSignUp_Conflicts(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.deps.Verifier.Register(context.Background(), auth.SignUp{
		Name: "Taken Name", Username: "takenName", Email: "taken@example.com", Password: "secret",
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		req     dto.SignUpRequest
		message string
	}{
		{
			name:    "duplicate email",
			req:     dto.SignUpRequest{Name: "Someone Else", UserName: "someoneElse", Email: seedEmail, Password: "secret"},
			message: auth.MsgEmailTaken,
		},
		{
			name:    "duplicate username",
			req:     dto.SignUpRequest{Name: "Someone Else", UserName: "takenName", Email: "else@example.com", Password: "secret"},
			message: auth.MsgUsernameTaken,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/signup", "", tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"success":false,"message":%q}`, tt.message), rec.Body.String())
		})
	}
}

func TestSignUp_Validation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/signup", "", dto.SignUpRequest{Name: "Abe", UserName: "ab", Email: "not-an-email", Password: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[dto.ErrorResponse](t, rec)
	assert.Equal(t, "Form validation failed", body.Message)
	assert.NotEmpty(t, body.Details)
}

func TestAvailability(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		query      string
		wantStatus int
		available  bool
	}{
		{"key=username&value=" + seedUsername, http.StatusOK, false},
		{"key=username&value=freeName", http.StatusOK, true},
		{"key=email&value=" + seedEmail, http.StatusOK, false},
		{"key=email&value=free@example.com", http.StatusOK, true},
		{"key=phone&value=123", http.StatusOK, false},
		{"key=username", http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/users/availability?"+tt.query, "", nil)
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.available, decodeBody[dto.Availability](t, rec).Available)
			}
		})
	}
}

func TestBarnLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, seedUsername, seedPassword)

	rec := env.do(t, http.MethodPost, "/api/barns", token, map[string]any{"name": "Spring Barn", "owner": "hr", "totalCarrot": 100})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[models.Barn](t, rec)
	require.NotNil(t, created.CreatedBy)
	assert.Equal(t, env.seed.ID, *created.CreatedBy)

	rec = env.do(t, http.MethodPut, fmt.Sprintf("/api/barns/%d", created.ID), token, map[string]any{"name": "Summer Barn", "owner": "hr", "totalCarrot": 150})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Summer Barn", decodeBody[models.Barn](t, rec).Name)

	rec = env.do(t, http.MethodGet, "/api/barns", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]models.Barn](t, rec), 1)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/barns/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"success":true,"message":"Data id : %d deleted successfully"}`, created.ID), rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/barns", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/barns/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[models.Barn](t, rec).Deleted)

	rec = env.do(t, http.MethodGet, "/api/barns/999", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Data not found with id : '999'", decodeBody[dto.ErrorResponse](t, rec).Message)

	rec = env.do(t, http.MethodPost, "/api/barns", token, map[string]any{"owner": "hr"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResourceRoutes(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, seedUsername, seedPassword)

	for _, path := range []string{
		"/api/roles", "/api/barns-settings", "/api/bazaars", "/api/bazaars-items", "/api/rewards",
		"/api/sharing-types", "/api/sharing-levels", "/api/transactions",
	} {
		t.Run(path, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, path, token, nil)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}

	rec := env.do(t, http.MethodPost, "/api/transactions", token, map[string]any{"type": "gift", "toFrom": "bob", "carrot": 3})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/transactions", token, map[string]any{"type": "shared", "toFrom": "bob", "carrot": 3})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestUserAdministration(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, seedUsername, seedPassword)

	rec := env.do(t, http.MethodPost, "/api/users", token, dto.SignUpRequest{
		Name: "Staff Member", UserName: "staffer", Email: "staff@example.com", Password: "secret",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")
	staff := decodeBody[models.User](t, rec)
	require.NotNil(t, staff.CreatedBy)
	assert.Equal(t, env.seed.ID, *staff.CreatedBy)

	rec = env.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d", staff.ID), token, map[string]any{"name": "Staff Renamed", "email": seedEmail})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, auth.MsgEmailTaken, decodeBody[dto.APIResponse](t, rec).Message)

	rec = env.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d", staff.ID), token, map[string]any{"name": "Staff Renamed", "email": "renamed@example.com"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Staff Renamed", decodeBody[models.User](t, rec).Name)

	staffToken := env.login(t, "staffer", "secret")

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", staff.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/users", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decodeBody[[]models.User](t, rec)
	require.Len(t, users, 1)
	assert.Equal(t, env.seed.ID, users[0].ID)

	rec = env.do(t, http.MethodGet, "/api/users/me", staffToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "tokens of deleted users stop resolving")

	rec = env.do(t, http.MethodPost, "/api/signin", "", dto.SignInRequest{UsernameOrEmail: "staffer", Password: "secret"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["database"])
}

func TestNotFoundWithToken(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, seedUsername, seedPassword)

	rec := env.do(t, http.MethodGet, "/api/does-not-exist", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
