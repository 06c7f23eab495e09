package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"attendance-platform/internal/attendance"
	"attendance-platform/internal/audit"
	"attendance-platform/internal/auth"
	"attendance-platform/internal/config"
	"attendance-platform/internal/directory"
	"attendance-platform/internal/faceid"
	"attendance-platform/internal/httpapi"
	"attendance-platform/internal/orgtime"
	"attendance-platform/internal/reporting"
	"attendance-platform/pkg/logger"
	"attendance-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	zone, err := orgtime.NewZone(cfg.Org.UTCOffset)
	if err != nil {
		log.Error("organization offset invalid", "err", err)
		os.Exit(1)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	var face faceid.Provider
	if cfg.Face.APIURL != "" {
		face, err = faceid.NewHTTPProvider(cfg.Face)
		if err != nil {
			log.Error("face provider init failed", "err", err)
			os.Exit(1)
		}
	} else {
		// Validate() already forbids this in production.
		log.Warn("FACE_API_URL not set, using in-memory face provider")
		face = faceid.NewMemoryProvider()
	}

	directorySvc := directory.NewService(directory.NewPostgresRepo(db))
	attendanceSvc := attendance.NewService(attendance.NewPostgresRepo(db), zone)
	auditSvc := audit.NewService(audit.NewPostgresRepo(db), zone)
	reportingSvc := reporting.NewService(reporting.NewPostgresRepo(db), zone)

	h := httpapi.Handlers{
		Auth:       authManager,
		Face:       face,
		Directory:  directorySvc,
		Attendance: attendanceSvc,
		Audit:      auditSvc,
		Reporting:  reportingSvc,
		Zone:       zone,
		Redis:      rdb,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, auth.RequireAccessToken(authManager), h)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env, "face_provider", face.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
