// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

// Server is the HTTP front end for a Recommender.
type Server struct {
	app    *fiber.App
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*serverConfig) error

type serverConfig struct {
	logger       *slog.Logger
	readTimeout  time.Duration
	writeTimeout time.Duration
	accessLog    bool
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *serverConfig) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// WithTimeouts sets the read and write timeouts. Zero means no timeout.
func WithTimeouts(read, write time.Duration) Option {
	return func(c *serverConfig) error {
		c.readTimeout = read
		c.writeTimeout = write
		return nil
	}
}

// WithAccessLog enables or disables per-request logging. Enabled by default.
func WithAccessLog(enabled bool) Option {
	return func(c *serverConfig) error {
		c.accessLog = enabled
		return nil
	}
}

// New builds the routes:
//
//	POST /api/v1/recommend
//	GET  /healthz
//	GET  /metrics
func New(recommender Recommender, opts ...Option) (*Server, error) {
	if recommender == nil {
		return nil, ErrRecommenderRequired
	}

	cfg := &serverConfig{
		logger:       slog.Default(),
		readTimeout:  30 * time.Second,
		writeTimeout: 30 * time.Second,
		accessLog:    true,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	log := cfg.logger.With("component", "server")

	app := fiber.New(fiber.Config{
		AppName:               "recommendit",
		DisableStartupMessage: true,
		ReadTimeout:           cfg.readTimeout,
		WriteTimeout:          cfg.writeTimeout,
	})
	app.Use(recover.New())
	if cfg.accessLog {
		app.Use(logger.New())
	}

	handler := NewHandler(recommender, log)

	app.Get("/healthz", handler.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")
	api.Post("/recommend", handler.Recommend)

	return &Server{app: app, logger: log}, nil
}

// App exposes the fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Listen(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.app.ShutdownWithContext(shutdownCtx)
	}
}
