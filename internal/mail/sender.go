// Package mail delivers accepted contact inquiries to the team.
package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sendai-ikuei-track/site-server/internal/model"
)

const (
	BackendResend = "resend"
	BackendLog    = "log"
)

// Sender delivers one inquiry. Implementations must respect ctx deadlines.
type Sender interface {
	Send(ctx context.Context, inquiry *model.Inquiry) error
	Backend() string
}

// LogSender writes inquiries to the log instead of sending them. It is used
// when no mail API key is configured.
type LogSender struct {
	logger zerolog.Logger
}

func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Backend() string {
	return BackendLog
}

func (s *LogSender) Send(_ context.Context, inquiry *model.Inquiry) error {
	s.logger.Info().
		Str("inquiryId", inquiry.ID).
		Str("name", inquiry.Name).
		Str("email", inquiry.Email).
		Str("category", inquiry.Category).
		Str("message", inquiry.Message).
		Time("receivedAt", inquiry.ReceivedAt).
		Msg("contact inquiry received (mail delivery disabled)")
	return nil
}
