package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/sendai-ikuei-track/site-server/internal/errors"
	"github.com/sendai-ikuei-track/site-server/internal/model"
	"github.com/sendai-ikuei-track/site-server/internal/util"
)

var credentialSigningMethod = jwt.SigningMethodHS256

// AccessConfig is the resolved configuration of the access gate. At most
// one of Password and PasswordHash needs to be set; the hash wins when both
// are.
type AccessConfig struct {
	Password     string
	PasswordHash string
	Secret       []byte
	TTL          time.Duration
}

// CredentialClaims are the claims of an exclusive content token.
type CredentialClaims struct {
	Authenticated bool `json:"authenticated"`
	jwt.RegisteredClaims
}

// AccessService issues and verifies credentials for the exclusive content
// area. It holds no state besides its configuration.
type AccessService struct {
	password     string
	passwordHash string
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

func NewAccessService(cfg AccessConfig) *AccessService {
	return &AccessService{
		password:     cfg.Password,
		passwordHash: cfg.PasswordHash,
		secret:       cfg.Secret,
		ttl:          cfg.TTL,
		now:          time.Now,
	}
}

// Configured reports whether any password can be accepted.
func (s *AccessService) Configured() bool {
	return (s.password != "" || s.passwordHash != "") && len(s.secret) > 0
}

// IssueCredential checks password against the configured one and mints a
// signed credential on match.
func (s *AccessService) IssueCredential(ctx context.Context, password string) (*model.Credential, error) {
	if password == "" {
		return nil, apperrors.ValidationError(apperrors.MsgMissingPassword)
	}

	if !s.Configured() {
		return nil, apperrors.Configuration(fmt.Errorf("exclusive password or signing secret not configured"))
	}

	if !s.passwordMatches(password) {
		return nil, apperrors.Unauthorized(apperrors.MsgWrongPassword)
	}

	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.ttl)

	token := jwt.NewWithClaims(credentialSigningMethod, CredentialClaims{
		Authenticated: true,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to sign credential")
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, apperrors.MsgAuthFailed, err)
	}

	return &model.Credential{
		Token:     signed,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// VerifyCredential reports whether token was issued by this server and has
// not expired. Malformed, tampered and expired tokens all yield false.
func (s *AccessService) VerifyCredential(token string) bool {
	if token == "" || len(s.secret) == 0 {
		return false
	}

	claims := &CredentialClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{credentialSigningMethod.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return false
	}

	return claims.Authenticated
}

func (s *AccessService) passwordMatches(password string) bool {
	if s.passwordHash != "" {
		return util.CheckPasswordHash(password, s.passwordHash)
	}
	return util.ConstantTimeEqual(password, s.password)
}
