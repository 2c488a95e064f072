package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/agenda/internal/actorctx"
	"github.com/geocoder89/agenda/internal/apperr"
	"github.com/geocoder89/agenda/internal/http/middlewares"
	"github.com/geocoder89/agenda/internal/policy"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	if s := ctx.GetString(middlewares.CtxRequestID); s != "" {
		return s
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindAuthentication:
		return http.StatusUnauthorized
	case apperr.KindAuthorization:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondAppError renders a service error. Internal causes are logged and
// never leave the process.
func RespondAppError(ctx *gin.Context, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Internal("Internal server error", err)
	}

	status := StatusFor(e.Kind)

	if status >= http.StatusInternalServerError {
		slog.Default().ErrorContext(ctx.Request.Context(), "request failed",
			"kind", e.Kind.String(),
			"code", e.Code,
			"err", err,
		)
	}

	var details interface{}
	if e.Field != "" {
		details = gin.H{"field": e.Field}
	}

	RespondError(ctx, status, e.Code, e.Message, details)
}

// actor returns the identity set by the auth middleware. Routes without it
// are never mounted behind handlers that call this, so a miss is a 401.
func actor(ctx *gin.Context) (policy.Actor, bool) {
	a, ok := actorctx.ActorFrom(ctx.Request.Context())
	if !ok {
		RespondError(ctx, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
		return policy.Actor{}, false
	}
	return a, true
}
