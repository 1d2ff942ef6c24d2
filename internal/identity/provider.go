// Package identity implements the authentication collaborator: it resolves
// the caller's portal session from a signed JWT and reports identity changes
// (sign-in, sign-out, token refresh) to subscribers.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Sai-Pat/Saksham-Web-sub000/internal/model"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/service"
	"github.com/golang-jwt/jwt/v5"
)

// Token errors.
var (
	ErrNoToken      = errors.New("no identity token")
	ErrInvalidToken = errors.New("invalid identity token")
)

// Claims are the portal claims carried by an identity token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenProvider resolves sessions from a bearer token verified with a shared
// HMAC secret. The token is swapped by sign-in/sign-out and every swap fires
// the registered change callbacks.
type TokenProvider struct {
	secret    []byte
	token     string
	callbacks []func()
	mu        sync.RWMutex
}

// NewTokenProvider creates a provider verifying tokens against secret.
func NewTokenProvider(secret []byte) (*TokenProvider, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("identity secret is required")
	}
	return &TokenProvider{secret: secret}, nil
}

// SetToken installs (or clears) the current bearer token and notifies
// subscribers of the identity change.
func (p *TokenProvider) SetToken(token string) {
	p.mu.Lock()
	p.token = strings.TrimSpace(token)
	callbacks := make([]func(), len(p.callbacks))
	copy(callbacks, p.callbacks)
	p.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// Current resolves the session for the installed token. Any parse or
// verification failure is returned as an error; the access gate degrades
// errors to a no-role session.
func (p *TokenProvider) Current(_ context.Context) (*model.Session, error) {
	p.mu.RLock()
	token := p.token
	p.mu.RUnlock()

	if token == "" {
		return nil, ErrNoToken
	}

	return ParseSession(token, p.secret)
}

// OnChange registers a callback fired whenever the token changes.
func (p *TokenProvider) OnChange(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callbacks = append(p.callbacks, fn)
}

// ParseSession verifies a token against secret and derives a session from
// its claims. An unknown role claim yields a session with no role rather
// than an error: the gate denies it, which is the required degradation.
func ParseSession(tokenString string, secret []byte) (*model.Session, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", ErrInvalidToken, t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	session := &model.Session{
		Subject: claims.Subject,
		Role:    parseRole(claims.Role),
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}

	return session, nil
}

func parseRole(role string) model.Role {
	switch model.Role(role) {
	case model.RoleAdmin:
		return model.RoleAdmin
	case model.RoleOfficer:
		return model.RoleOfficer
	default:
		return model.RoleNone
	}
}

// Ensure TokenProvider implements the IdentityProvider interface.
var _ service.IdentityProvider = (*TokenProvider)(nil)
