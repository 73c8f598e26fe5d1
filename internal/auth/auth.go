package auth

import (
	"context"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frahmantamala/catalog-management/internal"
)

const (
	RoleAdmin    = "ROLE_ADMIN"
	RoleOperator = "ROLE_OPERATOR"

	GrantTypePassword = "password"
	TokenTypeBearer   = "bearer"
)

// DefaultScopes are granted to every token issued to the static client.
var DefaultScopes = []string{"read", "write"}

var (
	ErrInvalidCredentials   = internal.ErrInvalidCredentials
	ErrInvalidClient        = internal.ErrInvalidClient
	ErrUnsupportedGrantType = internal.ErrUnsupportedGrantType
	ErrInvalidToken         = internal.ErrInvalidToken
	ErrMalformedToken       = internal.ErrMalformedToken
	ErrBadSignature         = internal.ErrBadSignature
	ErrTokenExpired         = internal.ErrTokenExpired
)

// Principal is the identity rebuilt from a validated access token.
type Principal struct {
	Subject     string    `json:"sub"`
	UserID      int64     `json:"userId"`
	FirstName   string    `json:"userFirstName"`
	Authorities []string  `json:"authorities"`
	Scopes      []string  `json:"scope"`
	ClientID    string    `json:"client_id"`
	ExpiresAt   time.Time `json:"exp"`
}

func (p *Principal) HasAuthority(authority string) bool {
	if p == nil {
		return false
	}
	return slices.Contains(p.Authorities, authority)
}

func (p *Principal) HasAnyAuthority(authorities ...string) bool {
	for _, a := range authorities {
		if p.HasAuthority(a) {
			return true
		}
	}
	return false
}

// Claims is the JWT payload. The custom claim names are part of the public token format.
type Claims struct {
	UserID      int64    `json:"userId"`
	FirstName   string   `json:"userFirstName"`
	Scope       []string `json:"scope"`
	Authorities []string `json:"authorities"`
	ClientID    string   `json:"client_id"`
	jwt.RegisteredClaims
}

// Client is the single OAuth client allowed to request tokens.
type Client struct {
	ID        string
	Secret    string
	GrantType string
	Scopes    []string
	Validity  time.Duration
}

func NewClient(cfg internal.SecurityConfig) Client {
	return Client{
		ID:        cfg.ClientID,
		Secret:    cfg.ClientSecret,
		GrantType: GrantTypePassword,
		Scopes:    DefaultScopes,
		Validity:  cfg.TokenValidity(),
	}
}

// UserCredentials is what the credential store hands back for a login attempt.
type UserCredentials struct {
	ID           int64
	Email        string
	FirstName    string
	PasswordHash string
	Authorities  []string
}

// AccessToken is an issued token plus the values echoed in the token response.
type AccessToken struct {
	Value     string
	JTI       string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Scopes    []string
	UserID    int64
	FirstName string
}

// CredentialStore looks users up by login. An unknown email is reported as
// internal.ErrResourceNotFound, never as a nil user.
type CredentialStore interface {
	FindUserByEmail(ctx context.Context, email string) (*UserCredentials, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

type TokenGenerator interface {
	Generate(user *UserCredentials, client Client) (*AccessToken, error)
	Validate(tokenString string) (*Principal, error)
}

// Metrics receives authentication outcomes. A nil Metrics is allowed everywhere.
type Metrics interface {
	TokenIssued(clientID string)
	TokenRejected(reason string)
	AccessDecision(outcome string)
}

type ServiceAPI interface {
	Issue(ctx context.Context, email, password string) (*AccessToken, error)
	AuthenticateClient(clientID, clientSecret string) error
	Token(ctx context.Context, dto TokenRequestDTO) (*AccessToken, error)
	ValidateAccessToken(tokenString string) (*Principal, error)
	ClientScopes() []string
}

type principalKey struct{}

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal attached by the gate, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
