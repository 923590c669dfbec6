package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mediconnect/internal/model"
)

const DefaultTokenTTL = 7 * 24 * time.Hour

var (
	ErrNoSecret = errors.New("auth: token secret is empty")

	// ErrInvalidToken is wrapped by every verification failure.
	ErrInvalidToken = errors.New("invalid token")
	ErrMalformed    = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrSignature    = fmt.Errorf("%w: bad signature", ErrInvalidToken)
	ErrExpired      = fmt.Errorf("%w: expired", ErrInvalidToken)
)

// Identity is what a token asserts about its bearer.
type Identity struct {
	UserID string     `json:"userId"`
	Email  string     `json:"email"`
	Role   model.Role `json:"role"`
}

type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type TokenService struct {
	secret   []byte
	ttl      time.Duration
	cacheTTL time.Duration
	now      func() time.Time
	cache    VerifyCache
}

type Option func(*TokenService)

func WithTTL(d time.Duration) Option {
	return func(s *TokenService) {
		if d > 0 {
			s.ttl = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *TokenService) { s.now = now }
}

// WithCache enables the positive-result cache. Entries live at most ttl and
// never past the token's own expiry.
func WithCache(c VerifyCache, ttl time.Duration) Option {
	return func(s *TokenService) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

func NewTokenService(secret string, opts ...Option) (*TokenService, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	s := &TokenService{
		secret: []byte(secret),
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

func (s *TokenService) TTL() time.Duration { return s.ttl }

func (s *TokenService) Issue(id Identity) (string, error) {
	now := s.now()
	c := Claims{
		UserID: id.UserID,
		Email:  id.Email,
		Role:   string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// Verify is the only way a token becomes an Identity. A cache hit is only
// possible for a byte-identical token that already passed full verification.
func (s *TokenService) Verify(ctx context.Context, raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, ErrMalformed
	}
	key := cacheKey(raw)
	if s.cache != nil {
		if id, ok := s.cache.Get(ctx, key); ok {
			return id, nil
		}
	}

	c, err := s.parse(raw)
	if err != nil {
		return Identity{}, err
	}
	role, err := model.ParseRole(c.Role)
	if err != nil || c.UserID == "" {
		return Identity{}, ErrMalformed
	}
	id := Identity{UserID: c.UserID, Email: c.Email, Role: role}

	if s.cache != nil && s.cacheTTL > 0 {
		ttl := s.cacheTTL
		if left := c.ExpiresAt.Time.Sub(s.now()); left < ttl {
			ttl = left
		}
		if ttl > 0 {
			s.cache.Set(ctx, key, id, ttl)
		}
	}
	return id, nil
}

func (s *TokenService) parse(raw string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrSignature
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, ErrMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpired
	default:
		return nil, ErrSignature
	}
	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrSignature
	}
	return c, nil
}

func cacheKey(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}
