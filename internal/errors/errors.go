package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

const (
	// Authentication
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// Validation
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeMissingRequired ErrorCode = "MISSING_REQUIRED"
	ErrCodeTooLarge        ErrorCode = "PAYLOAD_TOO_LARGE"

	// Rate Limiting
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"

	// Server side
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
)

// User-facing messages. The site is Japanese, so are its error messages.
const (
	MsgInvalidRequest    = "リクエストの形式が正しくありません"
	MsgMissingFields     = "必須項目が入力されていません"
	MsgInvalidEmail      = "メールアドレスの形式が正しくありません"
	MsgMissingPassword   = "パスワードが入力されていません"
	MsgWrongPassword     = "パスワードが正しくありません"
	MsgRateLimited       = "送信回数の上限に達しました。しばらく時間をおいてから再度お試しください"
	MsgTooManyAttempts   = "試行回数の上限に達しました。しばらく時間をおいてから再度お試しください"
	MsgNotConfigured     = "システムが正しく設定されていません。管理者にお問い合わせください"
	MsgSubmissionFailed  = "送信中にエラーが発生しました"
	MsgAuthFailed        = "認証中にエラーが発生しました"
	MsgNotAuthenticated  = "このコンテンツの閲覧にはパスワード認証が必要です"
	MsgRequestTooLarge   = "リクエストのサイズが大きすぎます"
	MsgUnexpectedFailure = "予期しないエラーが発生しました"
)

// AppError is a structured error that can be returned to clients
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
	// ResetAt is set on rate limit errors when the limiter knows when the
	// window rolls over.
	ResetAt time.Time `json:"-"`
	cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause adds a cause to the error
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// WithResetAt records when a rate limit window resets
func (e *AppError) WithResetAt(t time.Time) *AppError {
	e.ResetAt = t
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Common error constructors

func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message)
}

func ValidationError(message string) *AppError {
	return New(ErrCodeValidation, message)
}

func InvalidInput(message string) *AppError {
	return New(ErrCodeInvalidInput, message)
}

func MissingRequired() *AppError {
	return New(ErrCodeMissingRequired, MsgMissingFields)
}

func TooLarge() *AppError {
	return New(ErrCodeTooLarge, MsgRequestTooLarge)
}

func RateLimitExceeded(message string, resetAt time.Time) *AppError {
	return New(ErrCodeRateLimitExceeded, message).WithResetAt(resetAt)
}

// Configuration reports a missing or unusable server secret. The cause is
// kept for logs; the message never describes the configuration.
func Configuration(cause error) *AppError {
	return Wrap(ErrCodeConfiguration, MsgNotConfigured, cause)
}

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetCode returns the error code if the error is an AppError, otherwise returns ErrCodeInternal
func GetCode(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}
