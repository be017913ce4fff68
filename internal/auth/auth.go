package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Role values carried in the bearer token.
const (
	RoleUser   = "user"
	RoleDriver = "driver"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims issued to clickride accounts.
type Claims struct {
	UserID   string `json:"user_id"`
	DriverID string `json:"driver_id,omitempty"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller. Operations receive it explicitly.
type Principal struct {
	UserID   string
	DriverID string
	Email    string
	Role     string
}

// IsDriver reports whether the caller has a driver record.
func (p Principal) IsDriver() bool {
	return p.DriverID != ""
}

// Verifier checks HS256 bearer tokens.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier for the given shared secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses the token and returns its principal.
func (v *Verifier) Verify(token string) (Principal, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return Principal{}, ErrInvalidToken
	}

	return Principal{
		UserID:   claims.UserID,
		DriverID: claims.DriverID,
		Email:    claims.Email,
		Role:     claims.Role,
	}, nil
}
