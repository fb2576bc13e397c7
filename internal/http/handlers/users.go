package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/carrot/internal/auth"
	"github.com/hongminglow/carrot/internal/http/respond"
	"github.com/hongminglow/carrot/internal/models"
	"github.com/hongminglow/carrot/internal/models/dto"
	"github.com/hongminglow/carrot/internal/storage"
)

// UserUpdateRequest holds the user fields editable through PUT /users/{id}.
type UserUpdateRequest struct {
	Name   string `json:"name" validate:"required,min=4,max=75"`
	Email  string `json:"email" validate:"required,email"`
	Active *bool  `json:"active"`
}

// UserHandler serves the /users resource and the current-user endpoints.
type UserHandler struct {
	store    storage.UserStore
	verifier *auth.Verifier
	errs     errorWriter
	now      func() time.Time
}

func NewUserHandler(store storage.UserStore, verifier *auth.Verifier, exposeDetails bool) *UserHandler {
	return &UserHandler{
		store:    store,
		verifier: verifier,
		errs:     errorWriter{exposeDetails: exposeDetails},
		now:      time.Now,
	}
}

func (h *UserHandler) Register(r chi.Router) {
	r.Get("/users/me", h.handleMe)
	r.Get("/users/myprofile", h.handleProfile)
	r.Get("/users/availability", h.handleAvailability)
	r.Get("/users", h.handleList)
	r.Post("/users", h.handleCreate)
	r.Get("/users/{id}", h.handleGet)
	r.Put("/users/{id}", h.handleUpdate)
	r.Delete("/users/{id}", h.handleDelete)
}

func currentPrincipal(r *http.Request) (auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		// Authorize guarantees a principal on these routes.
		return auth.Principal{}, errors.New("no principal on request")
	}
	return p, nil
}

func (h *UserHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	p, err := currentPrincipal(r)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.UserSummary{ID: p.ID, Username: p.Username, Name: p.Name})
}

func (h *UserHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	p, err := currentPrincipal(r)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	user, err := h.store.FindByID(r.Context(), p.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = &NotFoundError{Resource: "User", Field: "username", Value: p.Username}
		}
		h.errs.write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.UserProfile{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Name:     user.Name,
		JoinedAt: user.CreatedTime,
	})
}

// handleAvailability reports whether a username or email is free. Unknown
// keys are reported as unavailable.
func (h *UserHandler) handleAvailability(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	value := r.URL.Query().Get("value")
	if key == "" || value == "" {
		h.errs.write(w, r, &ValidationError{Details: []string{"key and value query parameters are required"}})
		return
	}

	var (
		taken bool
		err   error
	)
	switch key {
	case "username":
		taken, err = h.store.ExistsByUsername(r.Context(), value)
	case "email":
		taken, err = h.store.ExistsByEmail(r.Context(), value)
	default:
		respond.JSON(w, http.StatusOK, dto.Availability{Available: false})
		return
	}
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.Availability{Available: !taken})
}

func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	respond.JSON(w, http.StatusOK, users)
}

func (h *UserHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.SignUpRequest
	if err := decode(r, &req); err != nil {
		h.errs.write(w, r, err)
		return
	}
	principal, err := h.verifier.Register(r.Context(), auth.SignUp{
		Name:     req.Name,
		Username: req.UserName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	user, err := h.store.FindByID(r.Context(), principal.ID)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, user)
}

func (h *UserHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.load(r)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, err := h.load(r)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	var req UserUpdateRequest
	if err := decode(r, &req); err != nil {
		h.errs.write(w, r, err)
		return
	}

	email := strings.TrimSpace(req.Email)
	if email != user.Email {
		taken, err := h.store.ExistsByEmail(r.Context(), email)
		if err != nil {
			h.errs.write(w, r, err)
			return
		}
		if taken {
			h.errs.write(w, r, &auth.ConflictError{Field: "email", Message: auth.MsgEmailTaken})
			return
		}
	}

	user.Name = strings.TrimSpace(req.Name)
	user.Email = email
	if req.Active != nil {
		user.Active = *req.Active
	}
	user.StampUpdate(auth.ActorID(r.Context()), h.now())
	if err := h.store.UpdateUser(r.Context(), &user); err != nil {
		h.errs.write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, err := h.load(r)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	user.MarkDeleted(auth.ActorID(r.Context()), h.now())
	if err := h.store.UpdateUser(r.Context(), &user); err != nil {
		h.errs.write(w, r, err)
		return
	}
	respond.Message(w, http.StatusOK, true, fmt.Sprintf("Data id : %d deleted successfully", user.ID))
}

func (h *UserHandler) load(r *http.Request) (models.User, error) {
	id, err := pathID(r)
	if err != nil {
		return models.User{}, err
	}
	user, err := h.store.FindByID(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return models.User{}, dataNotFound(id)
	}
	return user, err
}
