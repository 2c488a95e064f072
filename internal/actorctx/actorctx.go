// Package actorctx carries per-request identity through context.Context so
// services and log handlers can read it without depending on gin.
package actorctx

import (
	"context"
	"time"

	"github.com/geocoder89/agenda/internal/policy"
)

type ctxKey int

const (
	keyActor ctxKey = iota
	keySession
	keyRequestID
)

// Session describes the token that authenticated the request.
type Session struct {
	JTI       string
	ExpiresAt time.Time
}

func WithActor(ctx context.Context, a policy.Actor) context.Context {
	return context.WithValue(ctx, keyActor, a)
}

func ActorFrom(ctx context.Context) (policy.Actor, bool) {
	a, ok := ctx.Value(keyActor).(policy.Actor)
	return a, ok && a.UserID != ""
}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, keySession, s)
}

func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(keySession).(Session)
	return s, ok
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

func RequestIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRequestID).(string)
	return v, ok && v != ""
}
