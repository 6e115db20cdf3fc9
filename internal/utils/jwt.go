package utils

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// Sentinel errors returned by ParseSessionToken.  Callers that must not
// leak the failure cause (the credential service) collapse both into a
// single authorization error; tests and logs can still tell them apart.
var (
    ErrTokenExpired = errors.New("session token expired")
    ErrTokenInvalid = errors.New("session token invalid")
)

// SessionToken represents a signed JWT session token along with its
// expiry.  The Token field contains the serialized JWT string; Exp is
// the UTC expiration time.  Session tokens are replayed by clients in
// the Authorization header on every protected request.
type SessionToken struct {
    Token string
    Exp   time.Time
}

// NewSessionToken builds and signs an HS256 JWT binding a session to a
// user id.  The JWT carries standard claims: subject (sub), expiration
// (exp) and issued at (iat).  The role is deliberately not embedded;
// authorization always consults the live user record so that role
// changes and deletions take effect immediately.
func NewSessionToken(secret, userID string, ttl time.Duration) (SessionToken, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := jwt.MapClaims{
        "sub": userID,
        "exp": exp.Unix(),
        "iat": now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return SessionToken{}, err
    }
    return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken validates a session token string and returns the
// user id it was issued for.  It fails with ErrTokenExpired for a
// well-signed but stale token and ErrTokenInvalid for everything else
// (bad signature, wrong algorithm, malformed string, missing subject).
func ParseSessionToken(secret, raw string) (string, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Reject tokens signed with anything other than HMAC; accepting
        // the token's own alg claim would let a caller forge signatures.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrTokenInvalid
        }
        return []byte(secret), nil
    })
    if err != nil {
        if errors.Is(err, jwt.ErrTokenExpired) {
            return "", ErrTokenExpired
        }
        return "", ErrTokenInvalid
    }
    if !tok.Valid {
        return "", ErrTokenInvalid
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return "", ErrTokenInvalid
    }
    sub, ok := claims["sub"].(string)
    if !ok || sub == "" {
        return "", ErrTokenInvalid
    }
    return sub, nil
}
