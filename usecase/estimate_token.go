package usecase

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
	"subtitle-credit/domain/model"
)

// MaxEstimateTTL bounds how long an estimate stays acceptable.
const MaxEstimateTTL = 30 * time.Minute

var (
	ErrTokenExpired = errors.New("estimate token expired")
	ErrTokenInvalid = errors.New("estimate token invalid")
	ErrNoSecret     = errors.New("estimate secret not configured")
)

type ITokenCodec interface {
	Mint(claims model.EstimateClaims, ttl time.Duration) (string, time.Time, error)
	Verify(token string) (model.EstimateClaims, error)
}

type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), now: time.Now}
}

// WithClock replaces the issuing clock.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	c.now = now
	return c
}

func (c *TokenCodec) Mint(claims model.EstimateClaims, ttl time.Duration) (string, time.Time, error) {
	if len(c.secret) == 0 {
		return "", time.Time{}, ErrNoSecret
	}
	if ttl <= 0 || ttl > MaxEstimateTTL {
		ttl = MaxEstimateTTL
	}
	issued := c.now().UTC()
	expires := issued.Add(ttl)
	claims.IssuedAt = issued.Unix()
	claims.ExpiresAt = expires.Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

func (c *TokenCodec) Verify(token string) (model.EstimateClaims, error) {
	if len(c.secret) == 0 {
		return model.EstimateClaims{}, ErrTokenInvalid
	}
	var claims model.EstimateClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrTokenInvalid
		}
		return c.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 && ve.Errors&^(jwt.ValidationErrorExpired|jwt.ValidationErrorClaimsInvalid) == 0 {
			return model.EstimateClaims{}, ErrTokenExpired
		}
		return model.EstimateClaims{}, ErrTokenInvalid
	}
	if !parsed.Valid || claims.ExpiresAt == 0 {
		return model.EstimateClaims{}, ErrTokenInvalid
	}
	return claims, nil
}
