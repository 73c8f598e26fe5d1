package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTTokenGenerator signs and verifies HS256 access tokens with one process wide secret.
type JWTTokenGenerator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTTokenGenerator creates a generator. A nil now uses the wall clock.
func NewJWTTokenGenerator(secret string, ttl time.Duration, now func() time.Time) *JWTTokenGenerator {
	if now == nil {
		now = time.Now
	}
	return &JWTTokenGenerator{
		secret: []byte(secret),
		ttl:    ttl,
		now:    now,
	}
}

// Generate builds the claims for user and signs them. The client's validity wins over
// the generator default when it is set.
func (j *JWTTokenGenerator) Generate(user *UserCredentials, client Client) (*AccessToken, error) {
	if user == nil {
		return nil, errors.New("generate token: nil user")
	}

	ttl := j.ttl
	if client.Validity > 0 {
		ttl = client.Validity
	}
	scopes := client.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	issuedAt := jwt.NewNumericDate(j.now())
	expiresAt := jwt.NewNumericDate(issuedAt.Add(ttl))
	jti := uuid.NewString()

	authorities := append([]string{}, user.Authorities...)
	claims := &Claims{
		UserID:      user.ID,
		FirstName:   user.FirstName,
		Scope:       append([]string{}, scopes...),
		Authorities: authorities,
		ClientID:    client.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			ID:        jti,
			IssuedAt:  issuedAt,
			ExpiresAt: expiresAt,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &AccessToken{
		Value:     tokenString,
		JTI:       jti,
		IssuedAt:  issuedAt.Time,
		ExpiresAt: expiresAt.Time,
		Scopes:    claims.Scope,
		UserID:    user.ID,
		FirstName: user.FirstName,
	}, nil
}

// Validate checks the signature and expiry of tokenString and returns the principal it
// carries. It never touches storage.
func (j *JWTTokenGenerator) Validate(tokenString string) (*Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, classifyTokenError(err)
	}
	if !token.Valid {
		return nil, ErrMalformedToken
	}

	p := &Principal{
		Subject:     claims.Subject,
		UserID:      claims.UserID,
		FirstName:   claims.FirstName,
		Authorities: claims.Authorities,
		Scopes:      claims.Scope,
		ClientID:    claims.ClientID,
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformedToken.WithCause(err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrBadSignature.WithCause(err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired.WithCause(err)
	default:
		return ErrMalformedToken.WithCause(err)
	}
}
