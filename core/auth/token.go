package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"musicfy/model"
)

// Token verification failure modes. ParseToken returns exactly one of these
// so callers can tell an expired session from a forged or garbled one.
var (
	ErrTokenExpired     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrMalformedToken   = errors.New("token is malformed")
)

// Package-level settings, fixed once at startup via Configure. Rotating the
// secret invalidates every outstanding token.
var (
	jwtSecret         []byte
	tokenTTL          = 24 * time.Hour
	bcryptCost        = 10
	minPasswordLength = 6
)

// Config carries the credential and token settings.
type Config struct {
	Secret            string
	TokenTTL          time.Duration // zero keeps the 24h default
	BcryptCost        int           // zero keeps the default cost of 10
	MinPasswordLength int           // zero keeps the default of 6
}

// Configure sets the package-level auth settings. It must be called once
// before tokens are issued or passwords hashed.
func Configure(cfg Config) error {
	if cfg.Secret == "" {
		return errors.New("auth: signing secret must not be empty")
	}
	jwtSecret = []byte(cfg.Secret)
	if cfg.TokenTTL > 0 {
		tokenTTL = cfg.TokenTTL
	}
	if cfg.BcryptCost > 0 {
		bcryptCost = cfg.BcryptCost
	}
	if cfg.MinPasswordLength > 0 {
		minPasswordLength = cfg.MinPasswordLength
	}
	return nil
}

// Claims is the token payload: the user id is the authoritative subject,
// the remaining fields are a display snapshot taken at issue time. They can
// go stale until the token expires and must not be written back anywhere.
type Claims struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	IsArtist bool   `json:"isArtist,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken issues a signed HS256 token for the user, valid for the
// configured TTL.
func GenerateToken(user *model.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsArtist: user.IsArtist,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseToken verifies the signature and expiry of a token string and
// returns its claims. Verification is pure: only the token, the secret and
// the clock participate.
func ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return jwtSecret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrMalformedToken
		}
	}
	if !token.Valid {
		return nil, ErrInvalidSignature
	}
	return claims, nil
}
