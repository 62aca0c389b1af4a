package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"inventory/api/internal/models"
)

// SessionClaims is the shape of the access tokens minted by the external
// auth provider. Only identity fields are consumed here; role and
// activation always come from the profile record, never the token.
type SessionClaims struct {
	Email    string `json:"email"`
	UserMeta struct {
		AvatarURL string `json:"avatar_url"`
	} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// ParseSession verifies a provider token and extracts the transient
// session identity. An expired or forged token is an error; the caller
// treats that the same as no session at all.
func ParseSession(tokenStr string, secret string) (models.Session, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return models.Session{}, fmt.Errorf("parse session token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return models.Session{}, fmt.Errorf("invalid session token")
	}

	return models.Session{
		UserID:    claims.Subject,
		Email:     claims.Email,
		AvatarURL: claims.UserMeta.AvatarURL,
	}, nil
}
