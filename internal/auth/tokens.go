package auth

import (
	"errors"
	"time"

	"meme-hunter/internal/chain"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"

	issuer = "meme-hunter"
)

var (
	ErrInvalidToken = errors.New("invalid_token")
	ErrNoSecret     = errors.New("admin_auth_disabled")
)

// OperatorClaims identifies the operator plane caller. Subject is the
// caller's ledger address, which the program checks against the config
// authority or relayer.
type OperatorClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

func (c *OperatorClaims) Address() (chain.Address, error) {
	return chain.ParseAddress(c.Subject)
}

// IssueToken signs an HS256 operator token for subject.
func IssueToken(secret []byte, subject chain.Address, role string, ttl time.Duration, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", ErrNoSecret
	}
	if role != RoleAdmin && role != RoleOperator {
		return "", ErrInvalidToken
	}
	now = now.UTC()
	claims := OperatorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken validates signature, expiry, issuer and subject format.
func ParseToken(secret []byte, raw string) (*OperatorClaims, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	token, err := jwt.ParseWithClaims(raw, &OperatorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*OperatorClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := claims.Address(); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
