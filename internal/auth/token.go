package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken matches every verification failure.
var ErrInvalidToken = errors.New("invalid token")

const (
	ReasonMalformed = "malformed"
	ReasonSignature = "signature"
	ReasonExpired   = "expired"
	ReasonSubject   = "subject"
	ReasonIssuer    = "issuer"
	ReasonInvalid   = "invalid"
)

type InvalidTokenError struct {
	Reason string
}

func (e InvalidTokenError) Error() string {
	return "invalid token: " + e.Reason
}

func (e InvalidTokenError) Is(target error) bool {
	return target == ErrInvalidToken
}

// Claims is what a verified token says about its bearer.
type Claims struct {
	SubjectID uuid.UUID
	Role      string
	ExpiresAt time.Time
}

// tokenClaims is the wire form. Some issuers spell the role claim in upper case.
type tokenClaims struct {
	jwt.RegisteredClaims
	Role      string `json:"role,omitempty"`
	RoleUpper string `json:"ROLE,omitempty"`
}

var validMethods = []string{
	jwt.SigningMethodHS256.Alg(),
	jwt.SigningMethodHS384.Alg(),
	jwt.SigningMethodHS512.Alg(),
}

type Config struct {
	Secret []byte
	// Issuer, when set, must match the iss claim.
	Issuer string
	Now    func() time.Time
}

// Verifier checks HMAC signed bearer tokens. It is stateless and safe for
// concurrent use.
type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewVerifier(cfg Config) (*Verifier, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("auth.NewVerifier: empty secret")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Verifier{
		secret: cfg.Secret,
		issuer: cfg.Issuer,
		now:    cfg.Now,
	}, nil
}

// Verify returns the subject and role carried by token. Every failure is an
// InvalidTokenError; Verify never panics on untrusted input.
func (v *Verifier) Verify(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, InvalidTokenError{Reason: ReasonMalformed}
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(validMethods),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var parsed tokenClaims
	if _, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...); err != nil {
		return Claims{}, mapJWTError(err)
	}

	sub, err := uuid.Parse(parsed.Subject)
	if err != nil || sub == uuid.Nil {
		return Claims{}, InvalidTokenError{Reason: ReasonSubject}
	}

	role := parsed.Role
	if role == "" {
		role = parsed.RoleUpper
	}

	return Claims{
		SubjectID: sub,
		Role:      role,
		ExpiresAt: parsed.ExpiresAt.Time.UTC(),
	}, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return InvalidTokenError{Reason: ReasonMalformed}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return InvalidTokenError{Reason: ReasonSignature}
	case errors.Is(err, jwt.ErrTokenExpired):
		return InvalidTokenError{Reason: ReasonExpired}
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return InvalidTokenError{Reason: ReasonIssuer}
	}
	return InvalidTokenError{Reason: ReasonInvalid}
}

// Issuer signs HS256 tokens with the same secret the Verifier checks.
type Issuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewIssuer(cfg Config) *Issuer {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Issuer{secret: cfg.Secret, issuer: cfg.Issuer, now: cfg.Now}
}

func (i *Issuer) Issue(subject uuid.UUID, role string, ttl time.Duration) (string, error) {
	now := i.now()

	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Role: role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("auth.Issuer.Issue: %w", err)
	}

	return signed, nil
}
