package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/secondhandhub/marketplace/internal/blobstore"
	"github.com/secondhandhub/marketplace/internal/db"
	"github.com/secondhandhub/marketplace/internal/handlers"
	"github.com/secondhandhub/marketplace/internal/logger"
	"github.com/secondhandhub/marketplace/internal/repository/postgres"
	"github.com/secondhandhub/marketplace/internal/service/listing"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories and image storage
	storage := postgres.NewStorage(pool)
	blobs, err := blobstore.NewDiskStore(c.MediaRoot, c.MediaBaseURL)
	if err != nil {
		return nil, fmt.Errorf("error while creating image store. Err: %w", err)
	}

	listingService := listing.NewService(storage.Listing())

	mux := http.NewServeMux()
	mux.Handle("/", handlers.NewListingsRouter(listingService, blobs, logger))
	// Serve uploaded images so the URLs returned by the store resolve locally
	mux.Handle("GET /media/", http.StripPrefix("/media/", http.FileServer(http.Dir(c.MediaRoot))))

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server")
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
