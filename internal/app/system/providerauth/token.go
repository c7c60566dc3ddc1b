// Package providerauth is the client side of the upstream identity
// provider: it verifies (and, when Praxis acts as its own provider,
// issues) access tokens, revokes sessions, and carries the in-process
// session-change stream the identity reconciler subscribes to.
package providerauth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/praxishq/praxis/internal/app/system/identity"
)

// ErrInvalidToken covers malformed, mis-signed, and expired tokens.
var ErrInvalidToken = errors.New("providerauth: invalid access token")

// sessionClaims is the JWT payload shape the provider issues. UserType
// is the metadata hint the reconciler may fall back on; it is not
// authoritative.
type sessionClaims struct {
	jwt.RegisteredClaims
	Email    string `json:"email,omitempty"`
	UserType string `json:"user_type,omitempty"`
}

// IssueToken mints an access token for userID and returns it with its
// jti, which activity sessions record in place of the token itself.
// Used by the login and OAuth callback flows when no external provider
// is configured.
func (c *Client) IssueToken(userID, email, userType string, ttl time.Duration) (raw, tokenID string, err error) {
	now := time.Now().UTC()
	tokenID = uuid.NewString()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    c.issuer,
		},
		Email:    email,
		UserType: userType,
	}
	raw, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", "", err
	}
	return raw, tokenID, nil
}

// VerifyToken validates raw and converts it to the reconciler's session
// shape. The token string itself acts as the session's identity for
// dedup purposes.
func (c *Client) VerifyToken(raw string) (*identity.Session, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &identity.Session{
		AccessToken:  raw,
		UserID:       claims.Subject,
		Email:        claims.Email,
		UserTypeHint: claims.UserType,
	}, nil
}
