package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/streamhub-dev/accountd/internal/config"
)

// Claims is the JWT payload for a user session.
type Claims struct {
	UserID       uint64 `json:"uid"`
	Username     string `json:"username"`
	AuthProvider string `json:"auth_provider,omitempty"`
	SessionID    string `json:"sid"`
	jwt.RegisteredClaims
}

// NewCredentials builds session credentials with a fresh session ID.
func NewCredentials(userID uint64, username, authProvider string) Credentials {
	return Credentials{
		SessionID:    uuid.NewString(),
		UserID:       userID,
		Username:     username,
		AuthProvider: strings.ToUpper(strings.TrimSpace(authProvider)),
	}
}

// IssueToken signs a session JWT for the given credentials.
func IssueToken(cfg config.JWTConfig, creds Credentials) (string, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return "", fmt.Errorf("session: jwt secret is not configured")
	}
	now := time.Now().UTC()
	claims := Claims{
		UserID:       creds.UserID,
		Username:     creds.Username,
		AuthProvider: creds.AuthProvider,
		SessionID:    creds.SessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.Expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, errSign := token.SignedString([]byte(cfg.Secret))
	if errSign != nil {
		return "", fmt.Errorf("session: sign token: %w", errSign)
	}
	return signed, nil
}

// ParseToken validates a session JWT and returns its claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, errParse := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("session: unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if errParse != nil {
		return nil, fmt.Errorf("session: parse token: %w", errParse)
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, fmt.Errorf("session: invalid token")
	}
	return claims, nil
}

// CredentialsFromClaims rebuilds session credentials from verified claims.
func CredentialsFromClaims(claims *Claims) Credentials {
	return Credentials{
		SessionID:    claims.SessionID,
		UserID:       claims.UserID,
		Username:     claims.Username,
		AuthProvider: claims.AuthProvider,
	}
}
