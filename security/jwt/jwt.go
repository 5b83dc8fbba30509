// Package jwt issues and verifies the bearer tokens handed out at login
// and keeps the denylist of tokens revoked by logout.
package jwt

import (
	"errors"
	"time"

	jwtstd "github.com/golang-jwt/jwt/v5"
)

// TokenError is a token failure safe to show to clients
type TokenError string

func (e TokenError) Error() string { return string(e) }

// DefaultAccessTokenExpire is seven days
const DefaultAccessTokenExpire = 7 * 24 * time.Hour

const (
	ErrNeedTokenProvider = TokenError("cannot sign token without token provider")
	ErrInvalidToken      = TokenError("invalid token")
	ErrTokenExpired      = TokenError("token expired")
	ErrTokenParsing      = TokenError("token parsing error")
)

var hs256 = jwtstd.SigningMethodHS256

// Claims holds the verified content of an access token
type Claims struct {
	JTI       string
	Subject   string
	ExpiresAt time.Time
}

// TokenManager signs access tokens with a shared HMAC secret
type TokenManager struct {
	secret []byte
	expire time.Duration
	now    func() time.Time
}

// NewTokenManager returns a manager for secret. A non-positive expire
// falls back to DefaultAccessTokenExpire.
func NewTokenManager(secret string, expire time.Duration) *TokenManager {
	if expire <= 0 {
		expire = DefaultAccessTokenExpire
	}
	return &TokenManager{secret: []byte(secret), expire: expire, now: time.Now}
}

func (tm *TokenManager) keyFunc(*jwtstd.Token) (any, error) { return tm.secret, nil }

// GenerateAccessToken signs a token for subject identified by jti and
// returns it with its expiry truncated to the second.
func (tm *TokenManager) GenerateAccessToken(jti, subject string) (string, time.Time, error) {
	if len(tm.secret) == 0 {
		return "", time.Time{}, ErrNeedTokenProvider
	}

	issued := tm.now().Truncate(time.Second)
	expires := issued.Add(tm.expire)
	signed, err := jwtstd.NewWithClaims(hs256, jwtstd.RegisteredClaims{
		ID:        jti,
		Subject:   subject,
		IssuedAt:  jwtstd.NewNumericDate(issued),
		ExpiresAt: jwtstd.NewNumericDate(expires),
	}).SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, time.Unix(expires.Unix(), 0), nil
}

// ParseToken checks the HS256 signature and expiry of token. Expired
// tokens report ErrTokenExpired, every other failure ErrInvalidToken or
// ErrTokenParsing.
func (tm *TokenManager) ParseToken(token string) (*Claims, error) {
	if len(tm.secret) == 0 {
		return nil, ErrNeedTokenProvider
	}

	var rc jwtstd.RegisteredClaims
	parsed, err := jwtstd.ParseWithClaims(token, &rc, tm.keyFunc,
		jwtstd.WithValidMethods([]string{hs256.Alg()}),
		jwtstd.WithExpirationRequired(),
		jwtstd.WithTimeFunc(tm.now),
	)
	switch {
	case errors.Is(err, jwtstd.ErrTokenExpired):
		return nil, ErrTokenExpired
	case err != nil, !parsed.Valid:
		return nil, ErrInvalidToken
	}

	if rc.ID == "" || rc.Subject == "" || rc.ExpiresAt == nil {
		return nil, ErrTokenParsing
	}
	return &Claims{JTI: rc.ID, Subject: rc.Subject, ExpiresAt: rc.ExpiresAt.Time}, nil
}
