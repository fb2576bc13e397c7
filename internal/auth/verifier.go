package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hongminglow/carrot/internal/logger"
	"github.com/hongminglow/carrot/internal/metrics"
	"github.com/hongminglow/carrot/internal/models"
	"github.com/hongminglow/carrot/internal/storage"
)

var (
	// ErrBadCredentials is the single failure returned for unknown users and wrong passwords.
	ErrBadCredentials = errors.New("bad credentials")

	// ErrDefaultRoleMissing means the role assigned on sign-up is not in the store.
	ErrDefaultRoleMissing = errors.New("default user role not set")
)

const (
	MsgUsernameTaken = "Username is already taken!"
	MsgEmailTaken    = "Email Address already in use!"
)

// ConflictError reports a sign-up whose username or email is already registered.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// SignUp carries the fields of a self-registration.
type SignUp struct {
	Name     string
	Username string
	Email    string
	Password string
}

// LoginResult is the outcome of a successful login. Context is the login
// request's context with the principal published on it.
type LoginResult struct {
	Token     string
	Principal Principal
	Context   context.Context
}

// Verifier checks credentials and registers new accounts.
type Verifier struct {
	store       storage.UserStore
	tokens      *TokenManager
	defaultRole string
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewVerifier(store storage.UserStore, tokens *TokenManager, defaultRole string, m *metrics.Metrics) *Verifier {
	return &Verifier{
		store:       store,
		tokens:      tokens,
		defaultRole: defaultRole,
		metrics:     m,
		now:         time.Now,
	}
}

// EnsureDefaultRole fails when the sign-up role is absent. Call at startup.
func (v *Verifier) EnsureDefaultRole(ctx context.Context) error {
	_, err := v.defaultRoleRecord(ctx)
	return err
}

// Login authenticates identifier (username or email) and secret and mints a token.
func (v *Verifier) Login(ctx context.Context, identifier, secret string) (LoginResult, error) {
	user, err := v.store.FindByUsernameOrEmail(ctx, strings.TrimSpace(identifier))
	switch {
	case errors.Is(err, storage.ErrNotFound):
		v.metrics.Login("bad_credentials")
		return LoginResult{}, ErrBadCredentials
	case err != nil:
		v.metrics.Login("error")
		return LoginResult{}, fmt.Errorf("load user: %w", err)
	}

	if user.Deleted || !CheckPassword(user.Password, secret) {
		v.metrics.Login("bad_credentials")
		return LoginResult{}, ErrBadCredentials
	}

	principal, err := NewPrincipal(user)
	if err != nil {
		v.metrics.Login("bad_credentials")
		return LoginResult{}, ErrBadCredentials
	}
	token, err := v.tokens.GenerateFor(principal)
	if err != nil {
		v.metrics.Login("error")
		return LoginResult{}, err
	}

	v.metrics.Login("success")
	ctx = logger.WithUserID(WithPrincipal(ctx, principal), principal.ID)
	logger.InfoCtx(ctx, "user signed in", "username", principal.Username)
	return LoginResult{Token: token, Principal: principal, Context: ctx}, nil
}

// Register creates a user with the default role. Username and email
// collisions are checked separately and reported with distinct messages; the
// store's unique indexes settle concurrent attempts.
func (v *Verifier) Register(ctx context.Context, in SignUp) (Principal, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if err := v.checkAvailable(ctx, in); err != nil {
		return Principal{}, v.registrationFailed(err)
	}

	role, err := v.defaultRoleRecord(ctx)
	if err != nil {
		return Principal{}, v.registrationFailed(err)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return Principal{}, v.registrationFailed(fmt.Errorf("hash password: %w", err))
	}

	user := models.User{
		Name:     strings.TrimSpace(in.Name),
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
		Active:   true,
		Roles:    []models.Role{role},
	}
	user.StampCreate(ActorID(ctx), v.now())

	if err := v.store.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			if cerr := v.checkAvailable(ctx, in); cerr != nil {
				return Principal{}, v.registrationFailed(cerr)
			}
			return Principal{}, v.registrationFailed(&ConflictError{Field: "username", Message: MsgUsernameTaken})
		}
		return Principal{}, v.registrationFailed(fmt.Errorf("create user: %w", err))
	}

	v.metrics.Registration("success")
	logger.InfoCtx(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return NewPrincipal(user)
}

func (v *Verifier) checkAvailable(ctx context.Context, in SignUp) error {
	taken, err := v.store.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if taken {
		return &ConflictError{Field: "username", Message: MsgUsernameTaken}
	}
	taken, err = v.store.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken {
		return &ConflictError{Field: "email", Message: MsgEmailTaken}
	}
	return nil
}

func (v *Verifier) defaultRoleRecord(ctx context.Context) (models.Role, error) {
	role, err := v.store.FindRoleByName(ctx, v.defaultRole)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Role{}, fmt.Errorf("%w (%s)", ErrDefaultRoleMissing, v.defaultRole)
	}
	if err != nil {
		return models.Role{}, fmt.Errorf("load role %s: %w", v.defaultRole, err)
	}
	return role, nil
}

func (v *Verifier) registrationFailed(err error) error {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		v.metrics.Registration("conflict")
	} else {
		v.metrics.Registration("error")
	}
	return err
}
