// Package identity resolves the signed-in user's email address.
package identity

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Provider resolves the current user. ok is false when nobody is signed in.
type Provider interface {
	CurrentUserEmail() (email string, ok bool)
}

// Static is a fixed identity, e.g. taken from a CLI flag
type Static struct {
	Email string
}

func (s Static) CurrentUserEmail() (string, bool) {
	email := strings.TrimSpace(s.Email)
	return email, email != ""
}

// SessionManager issues and verifies HS256 session tokens carrying the user's email
type SessionManager struct {
	secret []byte
	issuer string
}

// NewSessionManager creates a session manager. secret should be at least 32 characters.
func NewSessionManager(secret, issuer string) *SessionManager {
	return &SessionManager{secret: []byte(secret), issuer: issuer}
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Issue creates a signed session token for email valid for ttl
func (m *SessionManager) Issue(email string, ttl time.Duration) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("email is empty")
	}

	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses a session token and returns the email it was issued for
func (m *SessionManager) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", fmt.Errorf("token is empty")
	}

	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer))
	if err != nil {
		return "", fmt.Errorf("failed to parse session token: %w", err)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid session token claims")
	}
	if claims.Email == "" {
		return "", fmt.Errorf("session token has no email claim")
	}
	return claims.Email, nil
}

// Session is a Provider backed by a session token. An invalid or expired token means signed out.
type Session struct {
	manager *SessionManager
	token   string
}

func NewSession(manager *SessionManager, token string) *Session {
	return &Session{manager: manager, token: token}
}

func (s *Session) CurrentUserEmail() (string, bool) {
	email, err := s.manager.Verify(s.token)
	if err != nil {
		return "", false
	}
	return email, true
}
