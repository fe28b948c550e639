package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mazen160/go-random"
)

const DefaultTokenTTL = 15 * time.Minute

var (
	errMissingSecret     = errors.New("token issuer has no secret")
	errIncompleteSession = errors.New("session is incomplete")
)

type sessionClaims struct {
	Session string `json:"session"`
	jwt.RegisteredClaims
}

// TokenIssuer signs sessions into HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret []byte, ttl time.Duration) TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return TokenIssuer{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (i TokenIssuer) clock() time.Time {
	if i.now == nil {
		return time.Now()
	}
	return i.now()
}

func (i TokenIssuer) Issue(session Session) (string, error) {
	if len(i.secret) == 0 {
		return "", errMissingSecret
	}
	// a token that Verify would reject must never be handed out
	if !session.Valid() {
		return "", errIncompleteSession
	}
	encoded, err := EncodeSession(session)
	if err != nil {
		return "", err
	}
	id, err := random.String(16)
	if err != nil {
		return "", err
	}

	ttl := i.ttl
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := i.clock()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Session: encoded,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(i.secret)
}

// Verify checks the signature and expiry of a token and returns the session
// inside of it.
func (i TokenIssuer) Verify(token string) (Session, error) {
	if len(i.secret) == 0 {
		return Session{}, fmt.Errorf("%w: %w", ErrInvalidToken, errMissingSecret)
	}
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(
		token, &claims,
		func(*jwt.Token) (any, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.clock),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Session == "" {
		return Session{}, fmt.Errorf("%w: missing session claim", ErrInvalidToken)
	}
	return DecodeSession(claims.Session)
}
