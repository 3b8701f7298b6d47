package security

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"medilink-client/internal/domain"
)

var (
	// ErrDecode is returned when a token is not a parseable signed token structure.
	ErrDecode = errors.New("token could not be decoded")
	// ErrMissingSubject is wrapped in ErrDecode when no subject claim is present.
	ErrMissingSubject = errors.New("token has no subject claim")
	// ErrTokenExpired is returned when a decodable token is already past its exp claim.
	ErrTokenExpired = errors.New("token has expired")
)

// IdentityResolver reads identity claims from a bearer token without
// contacting the network. Signatures are never checked: the result is
// advisory and must not back an authorization decision.
type IdentityResolver interface {
	Decode(token string) (*domain.Identity, error)
	IsExpired(token string) bool
}

type identityResolver struct {
	parser *jwt.Parser
	now    func() time.Time
}

func NewIdentityResolver() IdentityResolver {
	return NewIdentityResolverWithClock(time.Now)
}

func NewIdentityResolverWithClock(now func() time.Time) IdentityResolver {
	return &identityResolver{
		parser: jwt.NewParser(),
		now:    now,
	}
}

func (r *identityResolver) claims(token string) (jwt.MapClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrDecode)
	}
	claims := jwt.MapClaims{}
	if _, _, err := r.parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return claims, nil
}

// Decode maps every token shape the backends issue onto one Identity.
func (r *identityResolver) Decode(token string) (*domain.Identity, error) {
	claims, err := r.claims(token)
	if err != nil {
		return nil, err
	}

	id := firstClaim(claims, "userId", "user_id", "id", "sub")
	if id == "" {
		return nil, fmt.Errorf("%w: %w", ErrDecode, ErrMissingSubject)
	}

	identity := &domain.Identity{
		ID:    id,
		Name:  stringClaim(claims["name"]),
		Email: stringClaim(claims["email"]),
		Role:  roleClaim(claims),
	}
	if identity.Email == "" {
		if sub := stringClaim(claims["sub"]); strings.Contains(sub, "@") {
			identity.Email = sub
		}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if exp != nil {
		t := exp.Time.UTC()
		identity.ExpiresAt = &t
	}
	return identity, nil
}

// IsExpired is false for tokens without an exp claim and true once now >= exp.
// An undecodable token has nothing trustworthy to read and counts as expired.
func (r *identityResolver) IsExpired(token string) bool {
	claims, err := r.claims(token)
	if err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return true
	}
	if exp == nil {
		return false
	}
	return !r.now().Before(exp.Time)
}

func firstClaim(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		if v := stringClaim(claims[k]); v != "" {
			return v
		}
	}
	return ""
}

func stringClaim(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func roleClaim(claims jwt.MapClaims) domain.Role {
	if r := stringClaim(claims["role"]); r != "" {
		return domain.ParseRole(r)
	}
	if roles, ok := claims["roles"].([]any); ok && len(roles) > 0 {
		return domain.ParseRole(stringClaim(roles[0]))
	}
	return ""
}
