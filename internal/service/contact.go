package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sendai-ikuei-track/site-server/internal/audit"
	"github.com/sendai-ikuei-track/site-server/internal/config"
	apperrors "github.com/sendai-ikuei-track/site-server/internal/errors"
	"github.com/sendai-ikuei-track/site-server/internal/model"
	"github.com/sendai-ikuei-track/site-server/internal/sanitize"
	"github.com/sendai-ikuei-track/site-server/internal/telemetry"
	"github.com/sendai-ikuei-track/site-server/internal/util"
)

const contactRateLimitPrefix = "contact:"

// InquirySender hands an accepted inquiry to whoever reads them.
type InquirySender interface {
	Send(ctx context.Context, inquiry *model.Inquiry) error
}

// ContactService runs the contact form pipeline: rate check, shape check,
// required fields, sanitizing, email check, delivery.
type ContactService struct {
	limiter RateLimiter
	sender  InquirySender
	now     func() time.Time
}

func NewContactService(limiter RateLimiter, sender InquirySender) *ContactService {
	if limiter == nil {
		limiter = NewNoopRateLimiter()
	}
	return &ContactService{
		limiter: limiter,
		sender:  sender,
		now:     time.Now,
	}
}

// Submit validates one submission from identity and delivers it. Delivery
// failures are logged and never returned.
func (s *ContactService) Submit(ctx context.Context, identity string, body io.Reader) (*model.Inquiry, error) {
	if err := s.checkRateLimit(ctx, identity); err != nil {
		return nil, err
	}

	fields, err := decodeObject(body)
	if err != nil {
		return nil, err
	}

	raw := make(map[string]string, len(requiredContactFields))
	for _, name := range requiredContactFields {
		value, ok := stringField(fields, name)
		if !ok || strings.TrimSpace(value) == "" {
			return nil, apperrors.MissingRequired()
		}
		raw[name] = value
	}

	inquiry := &model.Inquiry{
		ID:         uuid.NewString(),
		Name:       sanitize.Input(raw["name"]),
		Email:      sanitize.Email(raw["email"]),
		Category:   sanitize.Input(raw["category"]),
		Message:    sanitize.Input(raw["message"]),
		ClientIP:   identity,
		ReceivedAt: s.now(),
	}

	if inquiry.Name == "" || inquiry.Category == "" || inquiry.Message == "" {
		return nil, apperrors.MissingRequired()
	}

	if !util.IsValidEmail(inquiry.Email) {
		return nil, apperrors.ValidationError(apperrors.MsgInvalidEmail)
	}

	if !inquiry.IsKnownCategory() {
		log.Debug().Str("inquiryId", inquiry.ID).Str("category", inquiry.Category).Msg("inquiry with free-text category")
	}

	s.deliver(ctx, inquiry)

	telemetry.Count(ctx, telemetry.GetMetrics().ContactSubmissionsTotal, "outcome", "accepted")
	audit.Log(ctx, audit.Event{
		Type: audit.EventContactReceived,
		IP:   identity,
		Details: map[string]any{
			"inquiry_id": inquiry.ID,
			"category":   inquiry.Category,
		},
	})

	return inquiry, nil
}

var requiredContactFields = []string{"name", "email", "category", "message"}

func (s *ContactService) checkRateLimit(ctx context.Context, identity string) error {
	checkCtx, cancel := context.WithTimeout(ctx, config.RateLimitCheckTimeout)
	defer cancel()

	decision := s.limiter.CheckLimit(checkCtx, contactRateLimitPrefix+identity, config.ContactRateLimit, config.ContactRateWindow)
	if decision.Allowed {
		return nil
	}

	telemetry.Count(ctx, telemetry.GetMetrics().RateLimitRejectionsTotal, "scope", "contact")
	audit.Log(ctx, audit.Event{
		Type: audit.EventRateLimitExceed,
		IP:   identity,
		Details: map[string]any{
			"scope": "contact",
		},
	})

	return apperrors.RateLimitExceeded(apperrors.MsgRateLimited, decision.ResetAt)
}

// deliver sends the inquiry with its own deadline so a client that hangs up
// right after submitting does not cancel the notification.
func (s *ContactService) deliver(ctx context.Context, inquiry *model.Inquiry) {
	deliveryCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.DeliveryTimeout)
	defer cancel()

	start := time.Now()
	err := s.sender.Send(deliveryCtx, inquiry)
	telemetry.GetMetrics().ContactDeliveryDuration.Record(ctx, float64(time.Since(start).Milliseconds()))

	if err == nil {
		return
	}

	log.Error().
		Err(err).
		Str("inquiryId", inquiry.ID).
		Msg("failed to deliver inquiry")
	telemetry.Count(ctx, telemetry.GetMetrics().ContactDeliveryFailuresTotal, "reason", deliveryFailureReason(err))
	audit.Log(ctx, audit.Event{
		Type: audit.EventContactDeliveryFailed,
		IP:   inquiry.ClientIP,
		Details: map[string]any{
			"inquiry_id": inquiry.ID,
			"error":      audit.Truncate(err.Error()),
		},
	})
}

func deliveryFailureReason(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "error"
}

func decodeObject(body io.Reader) (map[string]any, error) {
	if body == nil {
		return nil, apperrors.ValidationError(apperrors.MsgInvalidRequest)
	}

	decoder := json.NewDecoder(body)
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		var maxBytesErr *http.MaxBytesError
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &maxBytesErr):
			return nil, apperrors.TooLarge()
		case errors.As(err, &syntaxErr), errors.As(err, &typeErr),
			errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return nil, apperrors.ValidationError(apperrors.MsgInvalidRequest).WithCause(err)
		default:
			return nil, apperrors.Internal(apperrors.MsgSubmissionFailed).WithCause(fmt.Errorf("read contact body: %w", err))
		}
	}

	fields, ok := value.(map[string]any)
	if !ok {
		return nil, apperrors.ValidationError(apperrors.MsgInvalidRequest)
	}
	return fields, nil
}

// stringField coerces a scalar JSON value to a string. Null, objects and
// arrays count as missing.
func stringField(fields map[string]any, name string) (string, bool) {
	switch v := fields[name].(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return fmt.Sprintf("%t", v), true
	default:
		return "", false
	}
}
