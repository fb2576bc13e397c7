package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/carrot/internal/auth"
	"github.com/hongminglow/carrot/internal/http/respond"
	"github.com/hongminglow/carrot/internal/models/dto"
)

type fakeTokens map[string]int64

func (f fakeTokens) Validate(token string) (int64, error) {
	id, ok := f[token]
	if !ok {
		return 0, &auth.TokenError{Reason: auth.RejectMalformed}
	}
	return id, nil
}

type fakeResolver map[int64]auth.Principal

func (f fakeResolver) ResolveByID(_ context.Context, id int64) (auth.Principal, error) {
	p, ok := f[id]
	if !ok {
		return auth.Principal{}, auth.ErrPrincipalNotFound
	}
	return p, nil
}

type failingResolver struct{}

func (failingResolver) ResolveByID(context.Context, int64) (auth.Principal, error) {
	return auth.Principal{}, errors.New("database down")
}

var (
	alice     = auth.Principal{ID: 1, Username: "alice", Authorities: []string{"ROLE_STAFF"}}
	tokens    = fakeTokens{"good": 1, "orphan": 2}
	resolver  = fakeResolver{1: alice}
	apiPolicy = auth.NewPolicy(auth.DefaultRules("/api")...)
)

// captureHandler records the principal seen by the innermost handler.
type captureHandler struct {
	called    bool
	principal *auth.Principal
}

func (c *captureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.called = true
	if p, ok := auth.PrincipalFromContext(r.Context()); ok {
		c.principal = &p
	}
	w.WriteHeader(http.StatusNoContent)
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   *auth.Principal
	}{
		{name: "no header"},
		{name: "valid bearer", header: "Bearer good", want: &alice},
		{name: "wrong scheme", header: "Token good"},
		{name: "lowercase scheme", header: "bearer good"},
		{name: "empty token", header: "Bearer "},
		{name: "scheme only", header: "Bearer"},
		{name: "invalid token", header: "Bearer nope"},
		{name: "unknown subject", header: "Bearer orphan"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &captureHandler{}
			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			Authenticate(tokens, resolver)(next).ServeHTTP(rec, req)

			require.True(t, next.called, "authenticate must never short-circuit")
			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, tt.want, next.principal)
		})
	}
}

func TestAuthenticate_ResolverFailure(t *testing.T) {
	next := &captureHandler{}
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer good")

	Authenticate(tokens, failingResolver{})(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, next.called)
	assert.Nil(t, next.principal)
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		header     string
		wantStatus int
	}{
		{"protected without token", http.MethodGet, "/api/users", "", http.StatusUnauthorized},
		{"protected with garbage token", http.MethodGet, "/api/users", "Bearer junk", http.StatusUnauthorized},
		{"protected with valid token", http.MethodGet, "/api/users", "Bearer good", http.StatusNoContent},
		{"public without token", http.MethodPost, "/api/signin", "", http.StatusNoContent},
		{"public with garbage token", http.MethodPost, "/api/signin", "Bearer junk", http.StatusNoContent},
		{"public availability", http.MethodGet, "/api/users/availability", "", http.StatusNoContent},
		{"preflight", http.MethodOptions, "/api/barns", "", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &captureHandler{}
			chain := Authenticate(tokens, resolver)(Authorize(apiPolicy, nil)(next))

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			chain.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantStatus != http.StatusUnauthorized, next.called)
		})
	}
}

func TestAuthorize_UnauthorizedBody(t *testing.T) {
	rec := httptest.NewRecorder()
	Authorize(apiPolicy, nil)(&captureHandler{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rewards", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, respond.UnauthorizedMessage, body.Message)
	assert.False(t, body.Timestamp.IsZero())
}
