package model

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are JWT claims for a workflow session
type SessionClaims struct {
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}

// SessionResponse is returned when a session is opened
type SessionResponse struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
}
