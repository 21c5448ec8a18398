// demoservice is the container deployed to Cloud Run by gcpsetup. It
// fetches an external page on each request and reports its runtime
// environment, giving the verifier something observable to check.
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

	"github.com/wajahatashraf/gcp-setup/internal/constants"
	"github.com/wajahatashraf/gcp-setup/internal/logger"
	"github.com/wajahatashraf/gcp-setup/internal/service"
)

func main() {
	log := logger.Initialize(constants.Service, slog.LevelInfo)

	port := os.Getenv("PORT")
	if port == "" {
		port = constants.DefaultPort
	}

	targetURL := os.Getenv("TARGET_URL")
	handler := service.NewHandler(targetURL, log)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("demo service listening", "port", port, "target", handler.TargetURL())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}
