package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"wavehouse-backend/pkg/container"
)

const shutdownTimeout = 10 * time.Second

// Serve runs the HTTP API until ctx is cancelled, then shuts the server down
// and releases the container. Pending notifications are drained by Cleanup.
func Serve(ctx context.Context) error {
	appContainer, err := container.NewContainer()
	if err != nil {
		return fmt.Errorf("initialize container: %w", err)
	}
	defer appContainer.Cleanup()

	port := appContainer.Config.App.Port
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           SetupRouter(appContainer),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("🚀 %s listening on :%s (store: %s)",
			appContainer.Config.App.Name, port, appContainer.Config.Booking.StoreDriver)
		log.Printf("💚 Health Check: http://localhost:%s/api/v1/health", port)
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("🛑 Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	log.Println("✅ Server exited gracefully")
	return nil
}
