package utils

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Error codes returned in the `code` field of every error body. These are
// part of the wire contract consumed by the web and mobile clients.
const (
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeInvalidCreds     = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeInvalidToken     = "INVALID_TOKEN"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeDuplicate        = "DUPLICATE_RESOURCE"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeNotFound         = "RESOURCE_NOT_FOUND"
	ErrCodeInternal         = "INTERNAL_SERVER_ERROR"
)

// DevMode attaches internal error detail to responses. Never enable in
// production; it leaks error strings to clients.
var DevMode bool

// ErrorResponse is the uniform error envelope for the API.
type ErrorResponse struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Details   any       `json:"details,omitempty"`
}

// RespondErrorWithCode builds a JSON error response with a standard code
// and public message. The optional devErr is logged server-side and only
// exposed to the client when DevMode is on.
func RespondErrorWithCode(
	w http.ResponseWriter,
	status int,
	errorCode string,
	publicMessage string,
	devErrs ...error,
) {
	errBody := ErrorResponse{
		Code:      errorCode,
		Message:   publicMessage,
		Timestamp: time.Now().UTC(),
	}

	if len(devErrs) > 0 && devErrs[0] != nil {
		if DevMode {
			errBody.Details = devErrs[0].Error()
		}
		Logger.WithFields(logrus.Fields{
			"status": status,
			"code":   errorCode,
			"error":  devErrs[0].Error(),
		}).Error(publicMessage)
	} else {
		Logger.WithFields(logrus.Fields{
			"status": status,
			"code":   errorCode,
		}).Error(publicMessage)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errBody)
}

// RespondWithJSON for successful cases
func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
