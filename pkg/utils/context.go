package utils

import (
	"context"

	"ride-booking/internal/data/entity"
)

type contextKey string

const ActorKey contextKey = "actor"

// SetActor stores the verified caller on the request context.
func SetActor(ctx context.Context, actor entity.Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

// ActorFromContext returns the caller, or entity.Anonymous when none was set.
func ActorFromContext(ctx context.Context) entity.Actor {
	actor, ok := ctx.Value(ActorKey).(entity.Actor)
	if !ok {
		return entity.Anonymous
	}
	return actor
}
