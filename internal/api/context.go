package api

import (
	"context"

	"cleanbook/internal/workflow"
)

type ctxKey string

const ctxKeyActor ctxKey = "actor"

func WithActor(ctx context.Context, a workflow.Actor) context.Context {
	return context.WithValue(ctx, ctxKeyActor, a)
}

// ActorFromContext returns the authenticated staff actor, or nil when the
// request carried no valid session.
func ActorFromContext(ctx context.Context) *workflow.Actor {
	v := ctx.Value(ctxKeyActor)
	if v == nil {
		return nil
	}
	a, ok := v.(workflow.Actor)
	if !ok {
		return nil
	}
	return &a
}
