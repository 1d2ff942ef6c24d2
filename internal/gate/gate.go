// Package gate implements the access gate: it resolves the caller's session
// from the identity collaborator and answers the authorization question every
// other component asks before mutating anything.
package gate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Sai-Pat/Saksham-Web-sub000/internal/common"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/model"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/service"
)

// Gate resolves and authorizes caller sessions. It never caches a session
// across operations: every operation re-resolves against the identity
// provider, so a sign-out or token expiry takes effect immediately.
type Gate struct {
	identity service.IdentityProvider
	logger   *slog.Logger
}

// New creates a gate over the given identity provider.
func New(identity service.IdentityProvider) *Gate {
	g := &Gate{
		identity: identity,
		logger:   slog.Default().With("component", "gate"),
	}

	// Nothing is cached, so an identity change needs no invalidation work;
	// the subscription exists to surface the event in the logs.
	identity.OnChange(func() {
		g.logger.Info("identity changed, sessions re-resolve on next operation")
	})

	return g
}

// ResolveSession resolves the current caller's session. A failed identity
// lookup degrades to a no-role session, never to an error: failure to
// determine a role must deny, not default.
func (g *Gate) ResolveSession(ctx context.Context) *model.Session {
	session, err := g.identity.Current(ctx)
	if err != nil {
		g.logger.Debug("identity lookup failed, degrading to no-role session", "error", err)
		return &model.Session{}
	}
	return session
}

// Authorize reports whether session may act at the required role. A session
// with no subject, an expired session, or a session with no role is never
// authorized. Admin satisfies an officer requirement; the reverse does not
// hold.
func (g *Gate) Authorize(session *model.Session, required model.Role) bool {
	if required == model.RoleNone {
		return false
	}
	if !session.Valid() || session.Role == model.RoleNone {
		return false
	}

	switch required {
	case model.RoleAdmin:
		return session.Role == model.RoleAdmin
	case model.RoleOfficer:
		return session.Role == model.RoleOfficer || session.Role == model.RoleAdmin
	default:
		return false
	}
}

// Require resolves the caller and returns the session if it is authorized at
// the required role, or ErrUnauthorized. This is the call every mutating
// operation makes first.
func (g *Gate) Require(ctx context.Context, required model.Role) (*model.Session, error) {
	session := g.ResolveSession(ctx)
	if !g.Authorize(session, required) {
		return nil, fmt.Errorf("%w: role %q required", common.ErrUnauthorized, required)
	}
	return session, nil
}
