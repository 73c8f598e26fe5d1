package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/frahmantamala/catalog-management/internal"
	"github.com/frahmantamala/catalog-management/internal/core/common/validation"
)

// Service issues and validates access tokens for the single configured client.
type Service struct {
	store   CredentialStore
	hasher  PasswordHasher
	tokens  TokenGenerator
	client  Client
	logger  *slog.Logger
	metrics Metrics

	dummyOnce sync.Once
	dummyHash string
}

func NewService(store CredentialStore, hasher PasswordHasher, tokens TokenGenerator, client Client, logger *slog.Logger, metrics Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		hasher:  hasher,
		tokens:  tokens,
		client:  client,
		logger:  logger,
		metrics: metrics,
	}
}

// Issue checks email and password and returns a signed token. An unknown email and a
// wrong password fail with the same error.
func (s *Service) Issue(ctx context.Context, email, password string) (*AccessToken, error) {
	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, internal.ErrResourceNotFound) {
			// keep the timing of unknown emails close to a bad password
			s.hasher.Verify(password, s.placeholderHash())
			s.rejected("invalid_credentials")
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("failed to load credentials", "error", err)
		return nil, internal.NewInternalError("failed to load credentials", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.rejected("invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user, s.client)
	if err != nil {
		s.logger.Error("failed to sign access token", "user_id", user.ID, "error", err)
		return nil, internal.NewInternalError("failed to issue token", err)
	}

	if s.metrics != nil {
		s.metrics.TokenIssued(s.client.ID)
	}
	s.logger.Info("access token issued", "user_id", user.ID, "jti", token.JTI, "authorities", user.Authorities)
	return token, nil
}

// AuthenticateClient compares the presented client credentials with the configured ones.
func (s *Service) AuthenticateClient(clientID, clientSecret string) error {
	idOK := subtle.ConstantTimeCompare([]byte(clientID), []byte(s.client.ID)) == 1
	secretOK := subtle.ConstantTimeCompare([]byte(clientSecret), []byte(s.client.Secret)) == 1
	if !idOK || !secretOK {
		s.rejected("invalid_client")
		return ErrInvalidClient
	}
	return nil
}

// Token runs the whole password grant: client check, grant type, then Issue.
func (s *Service) Token(ctx context.Context, dto TokenRequestDTO) (*AccessToken, error) {
	if err := s.AuthenticateClient(dto.ClientID, dto.ClientSecret); err != nil {
		return nil, err
	}

	if dto.GrantType != s.client.GrantType {
		s.rejected("unsupported_grant_type")
		return nil, ErrUnsupportedGrantType
	}

	v := validation.NewValidator()
	v.Field("username", dto.Username).Required()
	v.Field("password", dto.Password).Required()
	if verr := v.Validate(); verr != nil {
		return nil, verr
	}

	return s.Issue(ctx, strings.TrimSpace(dto.Username), dto.Password)
}

func (s *Service) ValidateAccessToken(tokenString string) (*Principal, error) {
	return s.tokens.Validate(tokenString)
}

func (s *Service) ClientScopes() []string {
	return s.client.Scopes
}

func (s *Service) rejected(reason string) {
	if s.metrics != nil {
		s.metrics.TokenRejected(reason)
	}
}

func (s *Service) placeholderHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("placeholder-password")
		if err != nil {
			s.logger.Warn("failed to build placeholder hash", "error", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
