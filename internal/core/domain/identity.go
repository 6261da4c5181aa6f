package domain

import "time"

// Identity is what the identity provider vouches for after verifying a token.
type Identity struct {
	Subject string
	Email   string
}

// Session is handed to the caller on login. The access token is the bearer
// credential for every protected route.
type Session struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresIn   int64     `json:"expiresIn"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Credential is a password login held by the built-in identity provider.
// Subject is the stable id handed out as Identity.Subject.
type Credential struct {
	Subject      string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
