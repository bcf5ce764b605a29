package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pagechat/pagechat/config"
	"pagechat/pagechat/controllers"
	"pagechat/pagechat/middlewares"
	"pagechat/pagechat/routes"
	"pagechat/pagechat/services/llm"
	"pagechat/pagechat/sources/memory"
	"pagechat/pagechat/sources/psql"
	"pagechat/pagechat/sources/psql/dao"
	"pagechat/pagechat/sources/storage"
	"pagechat/pagechat/utils/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	logging.InitLogger()
	defer logging.Sync()
	cfg := config.LoadConfig()

	client, err := llm.NewClient(cfg)
	if err != nil {
		logging.ErrorLogger.Error("llm client error", zap.Error(err))
		logging.AppLogger.Fatal("cannot start relay without an upstream", zap.Error(err))
	}

	sessions := memory.NewSessionStore()
	relayCtrl := controllers.NewRelayController(client, sessions, cfg)
	healthCtrl := controllers.NewHealthController(relayCtrl.ActiveSessions)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if cfg.MinIOEndpoint != "" {
		minioClient, err := storage.NewMinIOClient(ctx, cfg)
		if err != nil {
			logging.ErrorLogger.Error("minio connection error", zap.Error(err))
			os.Exit(1)
		}
		relayCtrl.WithScreenshotArchive(minioClient)
		logging.AppLogger.Info("Screenshot archive enabled", zap.String("bucket", cfg.MinIOBucket))
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.RequestLogging)
	r.Use(middleware.Recoverer)

	r.Mount("/health", routes.HealthRoutes(healthCtrl))
	// no request timeout here, a websocket lives as long as the chat
	r.Mount("/ws", routes.RelayRoutes(relayCtrl, cfg))

	if cfg.ArchiveDSN != "" {
		db, err := psql.NewDatabase(ctx, cfg.ArchiveDSN)
		if err != nil {
			logging.ErrorLogger.Error("database connection error", zap.Error(err))
			os.Exit(1)
		}
		defer db.Close()
		transcriptDAO := dao.NewTranscriptDAO(db.DB)
		relayCtrl.WithTranscriptArchive(transcriptDAO)
		r.With(middleware.Timeout(60*time.Second)).
			Mount("/transcripts", routes.TranscriptRoutes(controllers.NewTranscriptsController(transcriptDAO), cfg))
		logging.AppLogger.Info("Transcript archive enabled")
	}

	srv := &http.Server{
		Addr:    cfg.RelayAddr,
		Handler: r,
	}
	go func() {
		logging.AppLogger.Info("WebSocket relay running", zap.String("addr", cfg.RelayAddr), zap.String("provider", cfg.LLMProvider), zap.String("model", cfg.LLMModel))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}
