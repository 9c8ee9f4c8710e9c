package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fastygo/taskboard/domain"
)

// accessClaims is the payload the identity provider signs into access tokens.
type accessClaims struct {
	Email        string              `json:"email"`
	UserMetadata domain.UserMetadata `json:"user_metadata"`
	jwt.RegisteredClaims
}

// parseAccessToken verifies an HMAC-signed access token and lifts its claims
// into a session. Tokens without exp get no expiry.
func parseAccessToken(secret []byte, accessToken string) (domain.SessionUser, time.Time, error) {
	var claims accessClaims
	token, err := jwt.ParseWithClaims(accessToken, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return domain.SessionUser{}, time.Time{}, domain.WrapError(domain.ErrCodeUnauthorized, "invalid access token", err)
	}
	if claims.Subject == "" {
		return domain.SessionUser{}, time.Time{}, domain.NewError(domain.ErrCodeUnauthorized, "access token has no subject")
	}

	user := domain.SessionUser{
		ID:       claims.Subject,
		Email:    claims.Email,
		Metadata: claims.UserMetadata,
	}
	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return user, expiresAt, nil
}
