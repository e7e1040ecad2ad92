package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/partaj-app/partaj-backend/internal/app"
	httpserver "github.com/partaj-app/partaj-backend/internal/http"
)

func main() {
	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	srv := httpserver.NewServer(application.Router)

	errCh := make(chan error, 1)
	go func() {
		application.Log.Info("Server listening", "addr", addr)
		errCh <- srv.Run(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			application.Log.Error("Server exited", "error", err)
			os.Exit(1)
		}
	case sig := <-quit:
		application.Log.Info("Shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			application.Log.Error("Graceful shutdown failed", "error", err)
		}
	}
}
