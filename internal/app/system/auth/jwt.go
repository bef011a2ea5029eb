package auth

import (
	"fmt"
	"strings"

	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken wraps every token rejection.
var ErrInvalidToken = fmt.Errorf("%w: invalid token", apperr.ErrUnauthorized)

// Claims is the payload the hosted identity provider signs for staff users.
type Claims struct {
	ChurchID int64  `json:"church_id"`
	Role     string `json:"role"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 tokens issued by the hosted provider.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier returns a Verifier. An empty issuer accepts any issuer.
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Verify parses tokenStr and maps its claims to a SessionUser.
func (v *Verifier) Verify(tokenStr string) (*SessionUser, error) {
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("%w: verifier has no secret", ErrInvalidToken)
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	role := strings.ToLower(strings.TrimSpace(claims.Role))
	if role != RoleAdmin && role != RoleStaff {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}
	if claims.ChurchID <= 0 {
		return nil, fmt.Errorf("%w: missing church_id", ErrInvalidToken)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &SessionUser{
		ID:       claims.Subject,
		Name:     claims.Name,
		Email:    claims.Email,
		Role:     role,
		ChurchID: claims.ChurchID,
	}, nil
}
