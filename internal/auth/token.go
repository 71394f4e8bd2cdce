package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session token verification failures. Verify always returns one of these
// (or a wrapped signing-library error for anything unexpected) so callers
// can distinguish a garbled token from a forged or stale one.
var (
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenSignature = errors.New("token signature is invalid")
	ErrTokenExpired   = errors.New("token is expired")
)

// Claims is the payload carried by a session token. The account key rides
// in the registered subject claim; handle and email are informational
// copies for clients that decode the token.
type Claims struct {
	Handle string `json:"handle"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// AccountID parses the subject claim back into an account key.
func (c Claims) AccountID() (int, error) {
	id, err := strconv.Atoi(c.Subject)
	if err != nil || id < 1 {
		return 0, errors.New("invalid subject")
	}
	return id, nil
}

// Tokens issues and verifies signed session tokens. Verification is
// stateless: the signature and the embedded expiry are the only checks, so
// rotating the secret invalidates every outstanding token at once.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured token lifetime.
func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// Issue signs a token for the account. The expiry is issuance plus the
// configured TTL.
func (t *Tokens) Issue(accountID int, handle, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Handle: handle,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(accountID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify recomputes the signature over the token and checks its expiry.
// On success the embedded claims come back unchanged. A token without an
// expiry claim is rejected outright; every issued token carries one, and
// accepting an unbounded token would bypass the fixed session lifetime.
func (t *Tokens) Verify(raw string) (Claims, error) {
	claims := Claims{}
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenSignature
		}
		return t.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrTokenSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrTokenExpired
		default:
			return Claims{}, err
		}
	}
	if !token.Valid {
		return Claims{}, ErrTokenSignature
	}
	return claims, nil
}
