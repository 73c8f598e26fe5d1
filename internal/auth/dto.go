package auth

import "strings"

// TokenRequestDTO is the body of POST /oauth/token, sent either as a form or as JSON.
type TokenRequestDTO struct {
	GrantType    string `json:"grant_type"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	Scope        string `json:"scope"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type AccessTokenResponse struct {
	AccessToken   string `json:"access_token"`
	TokenType     string `json:"token_type"`
	ExpiresIn     int64  `json:"expires_in"`
	Scope         string `json:"scope"`
	JTI           string `json:"jti"`
	UserID        int64  `json:"userId"`
	UserFirstName string `json:"userFirstName"`
}

func NewAccessTokenResponse(t *AccessToken) AccessTokenResponse {
	expiresIn := int64(t.ExpiresAt.Sub(t.IssuedAt).Seconds())
	return AccessTokenResponse{
		AccessToken:   t.Value,
		TokenType:     TokenTypeBearer,
		ExpiresIn:     expiresIn,
		Scope:         strings.Join(t.Scopes, " "),
		JTI:           t.JTI,
		UserID:        t.UserID,
		UserFirstName: t.FirstName,
	}
}
