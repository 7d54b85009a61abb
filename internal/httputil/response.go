package httputil

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/sendai-ikuei-track/site-server/internal/errors"
)

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Success bool                `json:"success"`
	Error   string              `json:"error"`
	Code    apperrors.ErrorCode `json:"code"`
	Details any                 `json:"details,omitempty"`
	// Reset is the rate limit window reset in unix milliseconds.
	Reset int64 `json:"reset,omitempty"`
}

// WriteError writes an AppError as an HTTP response with appropriate status code
func WriteError(w http.ResponseWriter, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		log.Error().Err(err).Msg("unhandled error")
		appErr = apperrors.Internal(apperrors.MsgUnexpectedFailure)
	}

	if appErr.Code == apperrors.ErrCodeConfiguration || appErr.Code == apperrors.ErrCodeInternal {
		if cause := appErr.Unwrap(); cause != nil {
			log.Error().Err(cause).Str("code", string(appErr.Code)).Msg("request failed")
		}
	}

	WriteErrorWithStatus(w, statusFromCode(appErr.Code), appErr)
}

// WriteErrorWithStatus writes an error with a specific HTTP status code
func WriteErrorWithStatus(w http.ResponseWriter, status int, err *apperrors.AppError) {
	response := ErrorResponse{
		Error:   err.Message,
		Code:    err.Code,
		Details: err.Details,
	}

	if !err.ResetAt.IsZero() {
		response.Reset = err.ResetAt.UnixMilli()
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(err.ResetAt.Unix(), 10))
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(err.ResetAt)))
	}

	WriteJSON(w, status, response)
}

func retryAfterSeconds(resetAt time.Time) int {
	secs := int(time.Until(resetAt).Seconds()) + 1
	if secs < 1 {
		return 1
	}
	return secs
}

// statusFromCode maps ErrorCode to HTTP status code
func statusFromCode(code apperrors.ErrorCode) int {
	switch code {
	// 400 Bad Request
	case apperrors.ErrCodeValidation,
		apperrors.ErrCodeInvalidInput,
		apperrors.ErrCodeMissingRequired:
		return http.StatusBadRequest

	// 401 Unauthorized
	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized

	// 413 Payload Too Large
	case apperrors.ErrCodeTooLarge:
		return http.StatusRequestEntityTooLarge

	// 429 Too Many Requests
	case apperrors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests

	// 500 Internal Server Error
	case apperrors.ErrCodeConfiguration,
		apperrors.ErrCodeInternal:
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}
