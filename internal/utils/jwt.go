package utils // package utils provides helper functions for token creation and hashing

import (
    "errors"
    "strings"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidToken is the single outcome of every verification failure:
// absent token, malformed token, bad signature, unexpected algorithm or a
// payload without a user id.  Callers cannot tell these cases apart.
var ErrInvalidToken = errors.New("invalid token")

// ErrEmptySecret is returned by NewTokenService when no signing secret is
// configured.  There is no built-in fallback secret.
var ErrEmptySecret = errors.New("token signing secret is empty")

// identityClaims is the token payload: {"user":{"id":"..."},"iat":...}.
// Tokens carry no exp claim and stay valid until the secret is rotated.
type identityClaims struct {
    User struct {
        ID string `json:"id"`
    } `json:"user"`
    jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 identity tokens with one
// process-wide secret supplied at construction.
type TokenService struct {
    secret []byte
    now    func() time.Time
}

// NewTokenService returns a TokenService signing with secret.
func NewTokenService(secret string) (*TokenService, error) {
    if strings.TrimSpace(secret) == "" {
        return nil, ErrEmptySecret
    }
    return &TokenService{secret: []byte(secret), now: time.Now}, nil
}

// Issue signs a token asserting userID.
func (s *TokenService) Issue(userID string) (string, error) {
    if userID == "" {
        return "", errors.New("issue token: empty user id")
    }
    claims := identityClaims{}
    claims.User.ID = userID
    claims.IssuedAt = jwt.NewNumericDate(s.now().UTC())
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    return t.SignedString(s.secret)
}

// Verify checks the signature of raw and returns the user id it asserts.
func (s *TokenService) Verify(raw string) (string, error) {
    raw = strings.TrimSpace(raw)
    if raw == "" {
        return "", ErrInvalidToken
    }
    var claims identityClaims
    tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
        // Reject anything that is not HMAC so a forged "none" or RSA header cannot pass.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return s.secret, nil
    }, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
    if err != nil || !tok.Valid {
        return "", ErrInvalidToken
    }
    if claims.User.ID == "" {
        return "", ErrInvalidToken
    }
    return claims.User.ID, nil
}
