package middlewares

// gin context keys. Handlers read the actor through actorctx instead.
const (
	CtxRequestID = "request_id"
	CtxActor     = "auth.actor"
)
