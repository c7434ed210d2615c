package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/hrhub/internal/auth"
	"github.com/geocoder89/hrhub/internal/cache"
	"github.com/geocoder89/hrhub/internal/config"
	"github.com/geocoder89/hrhub/internal/db"
	httpx "github.com/geocoder89/hrhub/internal/http"
	"github.com/geocoder89/hrhub/internal/http/handlers"
	"github.com/geocoder89/hrhub/internal/http/middlewares"
	"github.com/geocoder89/hrhub/internal/observability"
	"github.com/geocoder89/hrhub/internal/repo/memory"
	"github.com/geocoder89/hrhub/internal/repo/postgres"
	"github.com/geocoder89/hrhub/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// stores is the storage backend selected by STORAGE.
type stores struct {
	users       service.UserStore
	leaves      service.LeaveStore
	projects    service.ProjectStore
	departments service.DepartmentStore
	uow         service.UnitOfWork
	admin       db.AdminStore
	check       handlers.Check
	close       func()
}

func openStores(ctx context.Context, cfg config.Config, prom *observability.Prom, log *slog.Logger) (stores, error) {
	if cfg.Storage == "memory" {
		log.Warn("using in-memory storage; data is lost on restart")
		m := memory.NewStore()
		return stores{
			users:       m.Users(),
			leaves:      m.Leaves(),
			projects:    m.Projects(),
			departments: m.Departments(),
			uow:         m,
			admin:       m.Users(),
			check:       handlers.Check{Name: "memory", Ping: m.Ping},
			close:       func() {},
		}, nil
	}

	pool, err := db.Open(ctx, db.PoolOptions{
		URL:      cfg.DBURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
		AppName:  cfg.ServiceName,
	})
	if err != nil {
		return stores{}, fmt.Errorf("db connect: %w", err)
	}

	migrateCtx, cancel := config.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := db.Migrate(migrateCtx, pool); err != nil {
		pool.Close()
		return stores{}, fmt.Errorf("migrate: %w", err)
	}

	users := postgres.NewUsersRepo(pool, prom)
	return stores{
		users:       users,
		leaves:      postgres.NewLeavesRepo(pool, prom),
		projects:    postgres.NewProjectsRepo(pool, prom),
		departments: postgres.NewDepartmentsRepo(pool, prom),
		uow:         postgres.NewTxRunner(pool, prom),
		admin:       users,
		check:       handlers.Check{Name: "postgres", Ping: pool.Ping},
		close:       pool.Close,
	}, nil
}

// openCache prefers Redis and falls back to the process-local cache when Redis
// is not configured or not reachable at boot.
func openCache(ctx context.Context, cfg config.Config, log *slog.Logger) (cache.Store, *handlers.Check, func()) {
	if cfg.RedisAddr == "" {
		return cache.NewMemory(cfg.StatsCacheTTL()), nil, func() {}
	}

	rc := cache.NewRedis(cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := config.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rc.Ping(pingCtx); err != nil {
		log.Warn("redis unavailable, using in-process stats cache", "addr", cfg.RedisAddr, "err", err)
		_ = rc.Close()
		return cache.NewMemory(cfg.StatsCacheTTL()), nil, func() {}
	}

	return rc, &handlers.Check{Name: "redis", Ping: rc.Ping}, func() { _ = rc.Close() }
}

func main() {
	// Load the config set up
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName: cfg.ServiceName,
		Env:         cfg.Env,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
		SampleRatio: cfg.TraceRatio,
	})
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	st, err := openStores(ctx, cfg, prom, log)
	if err != nil {
		log.Error("storage init failed", "storage", cfg.Storage, "err", err)
		os.Exit(1)
	}
	defer st.close()

	statsStore, redisCheck, closeCache := openCache(ctx, cfg, log)
	defer closeCache()

	seedCtx, cancelSeed := config.WithTimeout(ctx, 5*time.Second)
	created, err := db.EnsureAdminUser(seedCtx, st.admin, cfg)
	cancelSeed()
	if err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}
	if created {
		log.Info("admin user created", "email", cfg.AdminEmail)
	}

	tokens := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL())
	stats := service.NewStatsCache(statsStore, cfg.StatsCacheTTL(), prom, log)

	users := service.NewUserService(service.UserServiceDeps{
		Users:       st.users,
		Leaves:      st.leaves,
		Projects:    st.projects,
		Departments: st.departments,
		UoW:         st.uow,
		Tokens:      tokens,
		Stats:       stats,
		Prom:        prom,
		Log:         log,
	})

	checks := []handlers.Check{st.check}
	if redisCheck != nil {
		checks = append(checks, *redisCheck)
	}

	router := httpx.NewRouter(httpx.Deps{
		Log:          log,
		Env:          cfg.Env,
		ServiceName:  cfg.ServiceName,
		Prom:         prom,
		Gatherer:     reg,
		CORSOrigins:  cfg.CORSOrigins,
		MaxBodyBytes: cfg.MaxBodyBytes,
		AuthLimiter:  middlewares.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow()),
		Tokens:       tokens,
		Users:        users,
		Leaves:       service.NewLeaveService(st.leaves, stats, prom, cfg.StrictLeaveTransitions),
		Projects:     service.NewProjectService(st.projects, st.users, stats),
		Departments:  service.NewDepartmentService(st.departments, stats),
		Checks:       checks,
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
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.Storage)
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

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
