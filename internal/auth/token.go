package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"sitecheck/internal/config"
	"sitecheck/internal/domain"
)

// Claims represents the JWT claims of an externally issued access token.
// The subject carries the user ID; UserID is accepted for issuers that put
// it in a separate claim.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

// ResolveUserID returns the user the token was issued to, preferring the
// registered subject over the user_id claim.
func (c *Claims) ResolveUserID() (uuid.UUID, error) {
	if c.RegisteredClaims.Subject != "" {
		id, err := uuid.Parse(c.RegisteredClaims.Subject)
		if err != nil {
			return uuid.Nil, fmt.Errorf("token subject: %w", domain.ErrUnauthorized)
		}
		return id, nil
	}
	if c.UserID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("token has no subject: %w", domain.ErrUnauthorized)
	}
	return c.UserID, nil
}

// TokenVerifier validates HS256 bearer tokens. It never issues tokens.
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier creates a TokenVerifier. An empty issuer disables the
// issuer check.
func NewTokenVerifier(cfg config.JWTConfig) *TokenVerifier {
	return &TokenVerifier{secret: []byte(cfg.Secret), issuer: cfg.Issuer}
}

// Verify parses and validates a token string and returns its claims.
func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w: %w", domain.ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
