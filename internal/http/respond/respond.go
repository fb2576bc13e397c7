// Package respond writes the API's JSON response bodies.
package respond

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/hongminglow/carrot/internal/logger"
	"github.com/hongminglow/carrot/internal/models/dto"
)

// UnauthorizedMessage is the body text for requests rejected by the policy layer.
const UnauthorizedMessage = "Sorry, You're not authorized to access this resource."

// JSON writes payload as-is.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("respond: encode payload failed", "error", err)
	}
}

// Message writes a {success, message} acknowledgement.
func Message(w http.ResponseWriter, status int, success bool, message string) {
	JSON(w, status, dto.APIResponse{Success: success, Message: message})
}

// Error writes the error body. Multiple details are joined with "; ".
func Error(w http.ResponseWriter, status int, message string, details ...string) {
	JSON(w, status, dto.ErrorResponse{
		Success:   false,
		Timestamp: time.Now().UTC(),
		Message:   message,
		Details:   strings.Join(details, "; "),
	})
}

// Unauthorized writes the 401 returned for protected paths without a principal.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, UnauthorizedMessage)
}
