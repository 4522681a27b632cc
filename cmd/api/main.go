// Package main is the entrypoint for the Shortleaf API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/shortleaf/shortleaf/internal/cache"
	"github.com/shortleaf/shortleaf/internal/config"
	"github.com/shortleaf/shortleaf/internal/handler"
	"github.com/shortleaf/shortleaf/internal/mail"
	"github.com/shortleaf/shortleaf/internal/repository"
	"github.com/shortleaf/shortleaf/internal/server"
	"github.com/shortleaf/shortleaf/internal/service"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Initialize services
	sessions := cache.NewSessionStore(cacheClient, cfg.SessionTTL)
	userService := service.NewUserService(repo, sessions, cfg.PasswordMinLength)
	linkService := service.NewLinkService(repo, cfg.BaseURL)

	// Support mail is optional; without SMTP settings the endpoint
	// reports delivery as unavailable.
	var supportSender handler.SupportSender
	if cfg.MailEnabled() {
		supportSender = mail.New(mail.Config{
			Host:         cfg.SMTPHost,
			Port:         cfg.SMTPPort,
			Username:     cfg.SMTPUsername,
			Password:     cfg.SMTPPassword,
			From:         cfg.SMTPFrom,
			SupportEmail: cfg.SupportEmail,
		})
		logger.Info("support mail enabled", "support_email", cfg.SupportEmail)
	} else {
		logger.Warn("support mail disabled, SMTP not configured")
	}

	// Initialize handlers
	cookieOpts := handler.CookieOptions{
		Secure: cfg.IsProduction(),
		TTL:    cfg.SessionTTL,
	}
	accountHandler := handler.NewAccountHandler(userService, cookieOpts, logger)
	linkHandler := handler.NewLinkHandler(linkService, logger)
	redirectHandler := handler.NewRedirectHandler(linkService, logger)
	supportHandler := handler.NewSupportHandler(supportSender, logger)
	healthHandler := handler.NewHealthHandler(repo, cacheClient)

	// Setup router
	r := handler.NewRouter(handler.RouterConfig{
		Accounts:       accountHandler,
		Links:          linkHandler,
		Redirects:      redirectHandler,
		Support:        supportHandler,
		Health:         healthHandler,
		Sessions:       userService,
		Logger:         logger,
		AllowedOrigins: cfg.GetCORSAllowedOrigins(),
		MaxBodySize:    cfg.MaxRequestBodySize,
	})

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
