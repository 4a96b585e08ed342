package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"checkmate-agent/internal/di"
	"checkmate-agent/internal/infrastructure/env"
)

func main() {
	envService := env.NewEnvService()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := di.NewContainer(ctx, envService)
	if err != nil {
		log.Fatalf("initialization failed: %v", err)
	}
	defer container.Close()

	port := envService.GetInt("PORT", 8080)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           container.Server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		container.Logger.Info("Server listening", "port", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			container.Logger.Error("Server failed", "error", err.Error())
			cancel()
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-stop:
	case <-ctx.Done():
	}

	container.Logger.Info("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Shutdown failed", "error", err.Error())
	}
}
