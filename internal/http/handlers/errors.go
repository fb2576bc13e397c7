package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hongminglow/carrot/internal/auth"
	"github.com/hongminglow/carrot/internal/http/respond"
	"github.com/hongminglow/carrot/internal/logger"
	"github.com/hongminglow/carrot/internal/storage"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError is a request that could not be decoded or failed field constraints.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Details, "; ")
}

// NotFoundError names the lookup that found nothing.
type NotFoundError struct {
	Resource string
	Field    string
	Value    any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with %s : '%v'", e.Resource, e.Field, e.Value)
}

func (e *NotFoundError) Unwrap() error { return storage.ErrNotFound }

func dataNotFound(id int64) error {
	return &NotFoundError{Resource: "Data", Field: "id", Value: id}
}

// errorWriter converts errors into responses. With exposeDetails set, unexpected
// errors are echoed to the client with a 404, as the legacy API did.
type errorWriter struct {
	exposeDetails bool
}

func (e errorWriter) write(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr     *ValidationError
		nf       *NotFoundError
		conflict *auth.ConflictError
	)
	switch {
	case errors.As(err, &verr):
		respond.Error(w, http.StatusBadRequest, "Form validation failed", verr.Details...)
	case errors.Is(err, auth.ErrBadCredentials):
		respond.Error(w, http.StatusNotFound, "Bad credentials")
	case errors.As(err, &conflict):
		respond.Message(w, http.StatusBadRequest, false, conflict.Message)
	case errors.Is(err, storage.ErrAlreadyExists):
		respond.Message(w, http.StatusBadRequest, false, "Data already exists")
	case errors.As(err, &nf):
		respond.Error(w, http.StatusNotFound, nf.Error())
	case errors.Is(err, storage.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "Data not found")
	case errors.Is(err, auth.ErrDefaultRoleMissing):
		logger.ErrorCtx(r.Context(), "sign-up role missing", "error", err)
		respond.Error(w, http.StatusInternalServerError, "User Role not set.")
	default:
		logger.ErrorCtx(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		if e.exposeDetails {
			respond.Error(w, http.StatusNotFound, err.Error(), "uri="+r.URL.Path)
			return
		}
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decode reads a JSON body into dst and runs its validate tags.
func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ValidationError{Details: []string{"invalid JSON payload: " + err.Error()}}
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				details = append(details, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
			}
			return &ValidationError{Details: details}
		}
		return &ValidationError{Details: []string{err.Error()}}
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &ValidationError{Details: []string{fmt.Sprintf("id: invalid value %q", raw)}}
	}
	return id, nil
}
