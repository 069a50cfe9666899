package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inpstories/internal/auth"
	"inpstories/internal/config"
	"inpstories/internal/db"
	"inpstories/internal/logger"
	"inpstories/internal/realtime"
	"inpstories/internal/router"
	"inpstories/internal/services"
	"inpstories/internal/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, envFile, err := config.Load()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("load config")
	}

	logger.Init(logger.Config{Level: cfg.LogLevel, JSONOutput: cfg.LogJSON})
	log := logger.WithComponent("main")
	if !envFile {
		log.Info().Msg("No .env file found, using environment variables")
	}
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache, err := utils.NewCache(cfg.CacheSize)
	if err != nil {
		log.Fatal().Err(err).Msg("create cache")
	}

	reconciler := services.NewReconciler(conn)
	go reconciler.Run(ctx)
	if cfg.ReconcileInterval > 0 {
		reconciler.StartPeriodic(ctx, cfg.ReconcileInterval)
	}

	hubOpts := []realtime.Option{realtime.WithClientRelay(cfg.RealtimeClientRelay)}
	var transport *realtime.RedisTransport
	if cfg.RedisURL != "" {
		client, err := realtime.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect redis")
		}
		defer client.Close()
		transport = realtime.NewRedisTransport(client, cfg.RealtimeChannel)
		hubOpts = append(hubOpts, realtime.WithTransport(transport))
	}

	hub := realtime.NewHub(hubOpts...)
	hub.Start()
	defer hub.Stop()
	if transport != nil {
		if err := transport.Attach(ctx, hub); err != nil {
			log.Fatal().Err(err).Msg("subscribe realtime channel")
		}
		log.Info().Str("channel", cfg.RealtimeChannel).Msg("Realtime events shared through redis")
	}

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry)
	testimonials := services.NewTestimonialService(conn, cache)

	engine := router.New(router.Deps{
		Config:       cfg,
		DB:           conn,
		Tokens:       tokens,
		Auth:         services.NewAuthService(conn, tokens),
		Testimonials: testimonials,
		Comments:     services.NewCommentService(conn, testimonials, reconciler),
		Hub:          hub,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("INP Stories server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
}
