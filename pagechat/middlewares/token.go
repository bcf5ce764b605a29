package middlewares

import (
	"errors"
	"time"

	"pagechat/pagechat/config"

	"github.com/golang-jwt/jwt/v5"
)

// IssueToken signs an HS256 relay access token for subject, valid for ttl.
// AuthMiddleware accepts it when configured with the same secret.
func IssueToken(cfg config.Config, subject string, ttl time.Duration) (string, error) {
	if cfg.JWTSecret == "" {
		return "", errors.New("JWT_SECRET is not set")
	}
	if subject == "" {
		return "", errors.New("subject is required")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
}
