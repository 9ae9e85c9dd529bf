package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"sitterboard/internal/config"
	"sitterboard/internal/database"
	apphttp "sitterboard/internal/http"
	"sitterboard/internal/http/handlers"
	httpmw "sitterboard/internal/http/middleware"
	"sitterboard/internal/repository/postgres"
	"sitterboard/internal/security"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	if pg, ok := rt.store.(*postgres.KVStore); ok {
		if err := pg.Migrate(ctx); err != nil {
			return err
		}
	}

	var limiter httpmw.Limiter = httpmw.NewRateLimiter()
	client, err := database.NewRedis(ctx, rt.cfg.RedisURL)
	if err != nil {
		return err
	}
	if client != nil {
		rt.redis = client
		limiter = httpmw.NewRedisLimiter(client, rt.logger)
		rt.logger.Info().Msg("apply rate limit shared through redis")
	}

	if rt.cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := apphttp.NewRouter(apphttp.RouterDependencies{
		NoticeHandler:      handlers.NewNoticeHandler(rt.noticeSvc),
		ApplicationHandler: handlers.NewApplicationHandler(rt.applicationService(limiter)),
		ProfileHandler:     handlers.NewProfileHandler(rt.profiles),
		Resolver:           security.NewIdentity(security.NewJWTProvider(rt.cfg.JWTSecret), rt.profileRepo),
		Metrics:            rt.metrics,
		MetricsHandler:     rt.metrics.Handler(),
		Logger:             rt.logger,
		RequestTimeout:     rt.cfg.RequestTimeout,
		CORSOrigins:        rt.cfg.CORSOrigins,
	})
	server := &http.Server{
		Addr:         ":" + rt.cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: rt.cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rt.logger.Info().Str("addr", server.Addr).Bool("allow_applications_when_filled", rt.cfg.AllowApplicationsWhenFilled).Msg("api started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		rt.logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the key-value table (postgres) or bucket (bolt)",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()
		switch store := rt.store.(type) {
		case *postgres.KVStore:
			if err := store.Migrate(cmd.Context()); err != nil {
				return err
			}
		default:
			if rt.cfg.StoreDriver == config.StoreMemory {
				rt.logger.Warn().Msg("memory store needs no migration")
				return nil
			}
		}
		rt.logger.Info().Str("driver", rt.cfg.StoreDriver).Msg("migration complete")
		return nil
	},
}
