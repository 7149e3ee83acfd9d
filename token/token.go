// Package token issues and verifies the signed bearer tokens used for
// sessions and password resets. Tokens are stateless; validity is decided by
// the HMAC signature and the embedded expiry alone.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Purpose tags what a token is allowed to be used for.
type Purpose string

const (
	PurposeSession Purpose = "session"
	PurposeReset   Purpose = "reset"
)

const (
	// SessionTTL is how long a signin token stays valid.
	SessionTTL = 120 * time.Minute
	// ResetTTL is how long a password-reset token stays valid.
	ResetTTL = time.Hour
	// OtpTTL is the window in which a one-time code can be redeemed.
	OtpTTL = 10 * time.Minute
)

// ErrInvalid covers malformed tokens, bad signatures, wrong signing
// algorithms and expired tokens alike.
var ErrInvalid = errors.New("invalid or expired token")

// Claims is the verified content of a token.
type Claims struct {
	Subject string
	Purpose Purpose
}

// Issuer signs and verifies tokens with a process-wide secret, injected at
// construction.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Issue signs a token carrying subject and purpose, expiring ttl from now.
func (i *Issuer) Issue(subject string, purpose Purpose, ttl time.Duration) (string, error) {
	now := i.now()
	claims := jwt.MapClaims{
		"sub":     subject,
		"purpose": string(purpose),
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify checks signature and expiry and returns the embedded claims.
// Any failure maps to ErrInvalid; callers must not leak the distinction.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalid
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalid
	}

	subject, _ := mapClaims["sub"].(string)
	if subject == "" {
		return nil, ErrInvalid
	}
	purpose, _ := mapClaims["purpose"].(string)

	return &Claims{Subject: subject, Purpose: Purpose(purpose)}, nil
}
