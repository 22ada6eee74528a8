package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/secondhandhub/marketplace/internal/db"
	"github.com/secondhandhub/marketplace/internal/handlers"
	"github.com/secondhandhub/marketplace/internal/linktoken"
	"github.com/secondhandhub/marketplace/internal/logger"
	"github.com/secondhandhub/marketplace/internal/notification"
	"github.com/secondhandhub/marketplace/internal/repository/postgres"
	"github.com/secondhandhub/marketplace/internal/service/auth"
	"github.com/secondhandhub/marketplace/internal/service/registration"
	"github.com/secondhandhub/marketplace/internal/service/user"
	"github.com/secondhandhub/marketplace/internal/token"
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

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize token signing
	tokenManager, err := token.New(token.Config{SecretKey: c.SecretKey})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}
	linkCodec, err := linktoken.New(linktoken.Config{SecretKey: c.SecretKey})
	if err != nil {
		return nil, fmt.Errorf("error while creating link token codec. Err: %w", err)
	}

	// Initialize email delivery
	sender, err := notification.NewSender(notification.Config{
		Host:          c.SMTPHost,
		Port:          c.SMTPPort,
		Username:      c.SMTPUsername,
		Password:      c.SMTPPassword,
		From:          c.EmailFrom,
		PublicBaseURL: c.PublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating email sender. Err: %w", err)
	}

	// Initialize services
	regService, err := registration.NewService(registration.Config{}, linkCodec, registration.NewPendingStore(), storage.User(), sender)
	if err != nil {
		return nil, fmt.Errorf("error while creating registration service. Err: %w", err)
	}
	authService, err := auth.NewService(auth.Config{}, tokenManager, linkCodec, storage.User(), sender)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	userService := user.NewService(storage.User())

	mux := handlers.NewUserRouter(regService, authService, userService, logger)

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
