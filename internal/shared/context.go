package shared

import "context"

// Actor identifies the authenticated user performing an operation. It is
// always passed explicitly into services; nothing below the HTTP layer reads
// request state.
type Actor struct {
	ID       int64
	Username string
	Role     string
}

// IsAdmin reports whether the actor carries the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Role names known to the system.
const (
	RoleAdmin  = "admin"
	RoleWorker = "worker"
)

type actorContextKey struct{}

// ContextWithActor stores the actor in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context. The second return value
// is false when no authenticated actor is attached.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}
