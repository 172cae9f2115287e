package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/bensgilbert/Collaborate/internal/api"
	"github.com/bensgilbert/Collaborate/internal/config"
	"github.com/bensgilbert/Collaborate/internal/routers"
	"github.com/bensgilbert/Collaborate/internal/services"
	"github.com/bensgilbert/Collaborate/internal/session"
)

var listenAndServe = http.ListenAndServe

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	rooms := session.NewManager(cfg.MaxDocumentBytes)

	var notifier session.Notifier
	if cfg.RedisAddr != "" {
		n := services.NewRoomNotifier(logger, cfg.RedisAddr)
		defer func() { _ = n.Close() }()
		notifier = n
	}

	dispatcher := session.NewDispatcher(logger, rooms, notifier)
	handlers := api.NewHandlers(logger, dispatcher, cfg.SendTimeout)

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
	)
	r.Mount("/", routers.New(handlers))

	addr := ":" + cfg.Port
	logger.Info("collaborate server listening", zap.String("addr", addr))
	if err := listenAndServe(addr, r); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
