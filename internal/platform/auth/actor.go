// Package auth provides JWT issuing and verification, the request middleware
// that resolves the acting user, and role-based access checks.
//
// The acting user is threaded into service calls as an explicit *Actor
// parameter rather than ambient state: authentication can be disabled
// (development deployments run without a login), and core operations must
// stay testable without a token.
package auth

import "context"

type contextKey string

const actorKey contextKey = "actor"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Actor identifies the authenticated user a request acts as. A nil *Actor
// means the request carries no identity at all.
type Actor struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// WithActor stores the actor on the request context.
func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFromContext returns the actor stored on the context, or nil.
func ActorFromContext(ctx context.Context) *Actor {
	a, _ := ctx.Value(actorKey).(*Actor)
	return a
}
