package dto

import "time"

// TokenRequest payload for the API-key exchange.
type TokenRequest struct {
	Service string `json:"service"`
	APIKey  string `json:"api_key"`
}

// TokenResponse carries the issued service token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
