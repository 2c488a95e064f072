package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/geocoder89/agenda/internal/auth"
	"github.com/geocoder89/agenda/internal/config"
	"github.com/geocoder89/agenda/internal/db"
	"github.com/geocoder89/agenda/internal/directory"
	httpx "github.com/geocoder89/agenda/internal/http"
	"github.com/geocoder89/agenda/internal/http/handlers"
	"github.com/geocoder89/agenda/internal/http/middlewares"
	"github.com/geocoder89/agenda/internal/observability"
	"github.com/geocoder89/agenda/internal/redisclient"
	"github.com/geocoder89/agenda/internal/repo/memory"
	"github.com/geocoder89/agenda/internal/repo/postgres"
	"github.com/geocoder89/agenda/internal/security"
	"github.com/geocoder89/agenda/internal/service"
)

type stores struct {
	units  service.UnitStore
	users  service.UserStore
	events service.EventStore
}

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTELEnabled {
		shutdown, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName: "agenda-api",
			Env:         cfg.Env,
			Endpoint:    cfg.OTELEndpoint,
			SampleRatio: cfg.OTELSampleRatio,
		})
		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}
		defer func() {
			sctx, scancel := config.WithTimeout(5 * time.Second)
			defer scancel()
			_ = shutdown(sctx)
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	ready := map[string]handlers.Pinger{}

	var st stores
	switch cfg.StoreBackend {
	case config.BackendMemory:
		log.Warn("using in-memory store; data is lost on restart")
		mem := memory.NewStore()
		st = stores{units: mem.Units(), users: mem.Users(), events: mem.Events()}

	default:
		pool, err := db.NewPool(ctx, cfg.DBURL, cfg.DBMaxConns)
		if err != nil {
			log.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		mctx, mcancel := context.WithTimeout(ctx, 30*time.Second)
		err = db.Migrate(mctx, pool)
		mcancel()
		if err != nil {
			log.Error("migration failed", "err", err)
			os.Exit(1)
		}

		ready["db"] = pool.Ping
		st = stores{
			units:  postgres.NewUnitsRepo(pool, prom),
			users:  postgres.NewUsersRepo(pool, prom),
			events: postgres.NewEventsRepo(pool, prom),
		}
	}

	hasher := security.Hasher{}

	created, err := db.EnsureGlobalAdmin(ctx, st.users, hasher, db.Admin{
		Email:      cfg.AdminEmail,
		Password:   cfg.AdminPassword,
		Name:       cfg.AdminName,
		ExternalID: cfg.AdminExternalID,
	})
	if err != nil {
		log.Error("bootstrap admin failed", "err", err)
		os.Exit(1)
	}
	if created {
		log.Info("bootstrap global admin created", "email", cfg.AdminEmail)
	}

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	// logout denylist is optional; without it tokens live until they expire
	var (
		revoker     service.Revoker
		revocations middlewares.RevocationChecker
	)
	if cfg.RedisAddr != "" {
		rc := redisclient.New(redisclient.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer func() { _ = rc.Close() }()

		deny := redisclient.NewDenylist(rc)
		revoker, revocations = deny, deny
		ready["redis"] = rc.Ping
	}

	// a nil interface, not a nil *Protected, means "not configured"
	var dir directory.Directory
	if cfg.HRDirectoryURL != "" {
		dir = directory.NewCached(
			directory.NewProtected(
				directory.NewHTTPDirectory(cfg.HRDirectoryURL, cfg.HRTimeout),
				directory.ProtectedConfig{Timeout: cfg.HRTimeout},
			),
			10*time.Minute,
		)
	}

	authSvc := service.NewAuth(st.users, hasher, tokens, revoker)
	authSvc.OnLogin = prom.ObserveLogin

	var draining atomic.Bool

	limiter := middlewares.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
	limiter.OnLimited = func() { prom.ObserveLogin("rate_limited") }

	writeLimiter := middlewares.NewRateLimiter(cfg.WriteRateLimit, time.Minute)

	router := httpx.NewRouter(httpx.Deps{
		Log:          log,
		Env:          cfg.Env,
		CORSOrigins:  cfg.CORSOrigins,
		Tracing:      cfg.OTELEnabled,
		Prom:         prom,
		Gatherer:     reg,
		Tokens:       tokens,
		Revocations:  revocations,
		LoginLimiter: limiter,
		WriteLimiter: writeLimiter,
		Auth:         authSvc,
		Units:        service.NewUnits(st.units),
		Events:       service.NewEvents(st.events),
		Users:        service.NewUsers(st.users, st.units, hasher),
		Employees:    service.NewEmployees(dir),
		Location:     cfg.Timezone,
		Ready:        ready,
		Draining:     draining.Load,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreBackend)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")
	draining.Store(true)

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		sctx, scancel := config.WithTimeout(10 * time.Second)
		defer scancel()

		if err := srv.Shutdown(sctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
