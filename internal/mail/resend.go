package mail

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog/log"

	"github.com/sendai-ikuei-track/site-server/internal/model"
)

const (
	defaultMaxTries        = 3
	defaultInitialInterval = 500 * time.Millisecond
	defaultMaxInterval     = 3 * time.Second
	defaultRequestTimeout  = 5 * time.Second
)

// emailAPI is the part of the Resend client the sender uses.
type emailAPI interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type ResendConfig struct {
	APIKey string
	From   string
	To     string
}

// ResendSender sends inquiries through the Resend API, retrying transient
// failures with exponential backoff inside the caller's deadline.
type ResendSender struct {
	emails   emailAPI
	from     string
	to       string
	maxTries uint
	newBack  func() backoff.BackOff
}

func NewResendSender(cfg ResendConfig) *ResendSender {
	httpClient := &http.Client{
		Timeout:   defaultRequestTimeout,
		Transport: statusTransport{base: http.DefaultTransport},
	}
	client := resend.NewCustomClient(httpClient, cfg.APIKey)
	return newResendSender(client.Emails, cfg.From, cfg.To)
}

type statusKey struct{}

// statusTransport stores the response status in the *int the request
// context carries, since the Resend client only returns message errors.
type statusTransport struct {
	base http.RoundTripper
}

func (t statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if resp != nil {
		recordStatus(req.Context(), resp.StatusCode)
	}
	return resp, err
}

func withStatus(ctx context.Context, status *int) context.Context {
	return context.WithValue(ctx, statusKey{}, status)
}

func recordStatus(ctx context.Context, code int) {
	if p, ok := ctx.Value(statusKey{}).(*int); ok {
		*p = code
	}
}

// isPermanent reports whether a response status means retrying the same
// request cannot succeed.
func isPermanent(status int) bool {
	if status == http.StatusRequestTimeout || status == http.StatusTooManyRequests {
		return false
	}
	return status >= 400 && status < 500
}

func newResendSender(emails emailAPI, from, to string) *ResendSender {
	return &ResendSender{
		emails:   emails,
		from:     from,
		to:       to,
		maxTries: defaultMaxTries,
		newBack: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = defaultInitialInterval
			b.MaxInterval = defaultMaxInterval
			return b
		},
	}
}

func (s *ResendSender) Backend() string {
	return BackendResend
}

func (s *ResendSender) Send(ctx context.Context, inquiry *model.Inquiry) error {
	html, err := RenderHTML(inquiry)
	if err != nil {
		return err
	}
	text, err := RenderText(inquiry)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{s.to},
		Subject: Subject(inquiry),
		Html:    html,
		Text:    text,
		ReplyTo: inquiry.Email,
	}

	start := time.Now()
	attempt := 0
	sent, err := backoff.Retry(ctx, func() (*resend.SendEmailResponse, error) {
		attempt++
		status := 0
		resp, err := s.emails.SendWithContext(withStatus(ctx, &status), params)
		if err != nil && isPermanent(status) {
			return nil, backoff.Permanent(fmt.Errorf("resend status %d: %w", status, err))
		}
		return resp, err
	},
		backoff.WithBackOff(s.newBack()),
		backoff.WithMaxTries(s.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn().
				Err(err).
				Str("inquiryId", inquiry.ID).
				Int("attempt", attempt).
				Dur("next_retry", next).
				Msg("inquiry email failed, will retry")
		}),
	)
	elapsed := time.Since(start)

	if err != nil {
		return fmt.Errorf("send inquiry email after %d attempts: %w", attempt, err)
	}

	log.Info().
		Str("inquiryId", inquiry.ID).
		Str("emailId", sent.Id).
		Dur("elapsed", elapsed).
		Msg("inquiry email sent")

	return nil
}
