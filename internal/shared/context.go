package shared

import "context"

type actorContextKey struct{}

// ContextWithActor stores the acting user id in context.
func ContextWithActor(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, actorContextKey{}, userID)
}

// ActorFromContext extracts the acting user id. Zero means system.
func ActorFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(actorContextKey{}).(int64)
	return id
}

// ActorPtr returns the acting user id or nil for system calls.
func ActorPtr(ctx context.Context) *int64 {
	id := ActorFromContext(ctx)
	if id == 0 {
		return nil
	}
	return &id
}
