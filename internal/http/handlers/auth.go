package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/carrot/internal/auth"
	"github.com/hongminglow/carrot/internal/http/respond"
	"github.com/hongminglow/carrot/internal/models/dto"
)

// AuthHandler owns the sign-in and sign-up endpoints.
type AuthHandler struct {
	verifier *auth.Verifier
	errs     errorWriter
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(verifier *auth.Verifier, exposeDetails bool) *AuthHandler {
	return &AuthHandler{verifier: verifier, errs: errorWriter{exposeDetails: exposeDetails}}
}

// Register attaches auth routes to r.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/signin", h.handleSignIn)
	r.Post("/signup", h.handleSignUp)
}

func (h *AuthHandler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req dto.SignInRequest
	if err := decode(r, &req); err != nil {
		h.errs.write(w, r, err)
		return
	}
	result, err := h.verifier.Login(r.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.TokenResponse{AccessToken: result.Token, TokenType: "Bearer"})
}

func (h *AuthHandler) handleSignUp(w http.ResponseWriter, r *http.Request) {
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
	base := strings.TrimSuffix(r.URL.Path, "/signup")
	w.Header().Set("Location", base+"/users/"+strconv.FormatInt(principal.ID, 10))
	respond.Message(w, http.StatusCreated, true, "User registered successfully")
}
