package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/geocoder89/agenda/internal/http/handlers"
	"github.com/geocoder89/agenda/internal/http/middlewares"
	"github.com/geocoder89/agenda/internal/observability"
	"github.com/geocoder89/agenda/internal/policy"
)

const serviceName = "agenda-api"

// Deps is everything the router mounts. Services are taken as the handler
// interfaces so tests can swap them.
type Deps struct {
	Log         *slog.Logger
	Env         string
	CORSOrigins []string
	Tracing     bool

	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	Tokens       middlewares.TokenVerifier
	Revocations  middlewares.RevocationChecker
	LoginLimiter *middlewares.RateLimiter
	WriteLimiter *middlewares.RateLimiter

	Auth      handlers.AuthService
	Units     handlers.UnitsService
	Events    handlers.EventsService
	Users     handlers.UsersService
	Employees handlers.EmployeeValidator

	Location *time.Location
	Ready    map[string]handlers.Pinger
	Draining func() bool
}

func NewRouter(d Deps) *gin.Engine {
	if d.Env != "dev" && d.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	if d.Tracing {
		r.Use(otelgin.Middleware(serviceName))
	}
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(middlewares.DefaultMaxBody))
	r.Use(middlewares.RequireJSON())

	// health
	h := handlers.NewHealthHandler(d.Ready, d.Draining)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	am := middlewares.NewAuthMiddleware(d.Tokens, d.Revocations)
	perm := am.RequirePermission

	// auth
	authHandler := handlers.NewAuthHandler(d.Auth)
	login := []gin.HandlerFunc{}
	if d.LoginLimiter != nil {
		login = append(login, d.LoginLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
	}
	r.POST("/auth/login", append(login, authHandler.Login)...)

	authed := r.Group("/")
	authed.Use(am.RequireAuth())
	if d.WriteLimiter != nil {
		authed.Use(middlewares.WritesOnly(d.WriteLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP)))
	}

	authed.GET("/auth/me", authHandler.Me)
	authed.POST("/auth/logout", authHandler.Logout)

	// units
	unitsHandler := handlers.NewUnitsHandler(d.Units)
	authed.GET("/units", perm(policy.ResourceUnit, policy.OpList), unitsHandler.List)
	authed.POST("/units", perm(policy.ResourceUnit, policy.OpCreate), unitsHandler.Create)
	authed.PUT("/units/:id", perm(policy.ResourceUnit, policy.OpUpdate), unitsHandler.Rename)
	authed.DELETE("/units/:id", perm(policy.ResourceUnit, policy.OpDelete), unitsHandler.Delete)

	// events
	eventsHandler := handlers.NewEventsHandler(d.Events, d.Location)
	authed.GET("/events", perm(policy.ResourceEvent, policy.OpList), eventsHandler.ListEvents)
	authed.GET("/events/export.ics", perm(policy.ResourceEvent, policy.OpList), eventsHandler.ExportICS)
	authed.GET("/events/:id", perm(policy.ResourceEvent, policy.OpRead), eventsHandler.GetEventByID)
	authed.POST("/events", perm(policy.ResourceEvent, policy.OpCreate), eventsHandler.CreateEvent)
	authed.PUT("/events/:id", perm(policy.ResourceEvent, policy.OpUpdate), eventsHandler.UpdateEvent)
	authed.DELETE("/events/:id", perm(policy.ResourceEvent, policy.OpDelete), eventsHandler.DeleteEvent)

	// users
	usersHandler := handlers.NewUsersHandler(d.Users, d.Employees)
	authed.GET("/users", perm(policy.ResourceUser, policy.OpList), usersHandler.List)
	authed.GET("/users/unit/:unitId", perm(policy.ResourceUser, policy.OpList), usersHandler.ListByUnit)
	authed.GET("/users/check-carnet/:id", perm(policy.ResourceUser, policy.OpCreate), usersHandler.CheckExternalID)
	authed.POST("/users/validate-employee", perm(policy.ResourceUser, policy.OpCreate), usersHandler.ValidateEmployee)
	authed.POST("/users", perm(policy.ResourceUser, policy.OpCreate), usersHandler.Create)
	authed.PUT("/users/:id", perm(policy.ResourceUser, policy.OpUpdate), usersHandler.Update)
	authed.DELETE("/users/:id", perm(policy.ResourceUser, policy.OpDelete), usersHandler.Delete)

	r.NoRoute(func(c *gin.Context) {
		handlers.RespondNotFound(c, "Route not found")
	})

	return r
}
