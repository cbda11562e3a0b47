package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ccf-policy/config"
	"ccf-policy/core/appbootstrap"
	"ccf-policy/core/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	logger := utils.NewLoggerWithOptions(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	rt, err := appbootstrap.InitRuntime(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatalf("init: %v", err)
	}
	defer rt.Close()

	go func() {
		if err := rt.Server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := rt.Server.Stop(ctx); err != nil {
		logger.Errorf("graceful shutdown: %v", err)
	}
}
