package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TallerAbierto/craftshare/internal/config"
	"github.com/TallerAbierto/craftshare/internal/database"
	"github.com/TallerAbierto/craftshare/internal/handlers"
	"github.com/TallerAbierto/craftshare/internal/logging"
	"github.com/TallerAbierto/craftshare/internal/middleware"
	"github.com/TallerAbierto/craftshare/internal/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Server exited", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := logging.ParseLevel(os.Getenv("LOG_LEVEL"))
	if cfg.Server.Debug {
		level = logging.LevelDebug
	}
	logging.SetDefaultLevel(level)

	db, err := database.NewPostgresDB(cfg.Database.DSN(), cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()

	migrator, err := database.NewMigrator(cfg.Database.DSN(), "migrations")
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		return err
	}
	migrator.Close()

	redisDB, err := database.NewRedisDB(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer redisDB.Close()

	pool := services.NewPoolAdapter(db.Pool)

	userService := services.NewUserService(pool)
	authService := services.NewAuthService(pool, redisDB.Client)
	albumService := services.NewAlbumService(pool)
	imageService := services.NewImageService(pool)
	feedService := services.NewFeedService(pool)
	notificationService := services.NewNotificationService(pool)
	realtimeService := services.NewRealtimeService(redisDB.Client)

	friendService := services.NewFriendService(pool, albumService, nil, notificationService, realtimeService)
	shareService := services.NewShareService(pool, albumService, friendService, notificationService, realtimeService)
	friendService.SetSharer(shareService)

	commentService := services.NewCommentService(pool, feedService, notificationService, realtimeService)

	authHandler := handlers.NewAuthHandler(userService, authService, cfg.Server.Secure)
	friendHandler := handlers.NewFriendHandler(friendService)
	albumHandler := handlers.NewAlbumHandler(albumService, imageService)
	shareHandler := handlers.NewShareHandler(shareService)
	feedHandler := handlers.NewFeedHandler(feedService)
	commentHandler := handlers.NewCommentHandler(commentService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	healthHandler := handlers.NewHealthHandler(db, redisDB)

	authMw := middleware.NewAuthMiddleware(authService)

	authLimiter := middleware.NewRateLimiter(redisDB.Client, 10, time.Minute, "ratelimit:auth:", nil)
	writeLimiter := middleware.NewRateLimiter(redisDB.Client, 30, time.Minute, "ratelimit:write:", func(r *http.Request) string {
		if user := handlers.GetUserFromContext(r.Context()); user != nil {
			return user.ID.String()
		}
		return ""
	})

	protected := func(h http.HandlerFunc) http.Handler {
		return authMw.RequireAuth(h)
	}
	limited := func(h http.HandlerFunc) http.Handler {
		return authMw.RequireAuth(writeLimiter.Limit(h))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /health/ready", healthHandler.Ready)
	mux.HandleFunc("GET /health/live", healthHandler.Live)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("POST /api/auth/register", authLimiter.Limit(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/auth/login", authLimiter.Limit(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.Handle("GET /api/auth/me", protected(authHandler.Me))
	mux.Handle("PUT /api/auth/searchable", protected(authHandler.UpdateSearchable))

	mux.Handle("GET /api/users/search", protected(friendHandler.Search))
	mux.Handle("GET /api/friends", protected(friendHandler.List))
	mux.Handle("GET /api/friends/requests", protected(friendHandler.ListRequests))
	mux.Handle("POST /api/friends/requests", limited(friendHandler.SendRequest))
	mux.Handle("POST /api/friends/requests/{id}/accept", limited(friendHandler.AcceptRequest))
	mux.Handle("POST /api/friends/requests/{id}/reject", limited(friendHandler.RejectRequest))

	mux.Handle("GET /api/albums", protected(albumHandler.List))
	mux.Handle("POST /api/albums", limited(albumHandler.Create))
	mux.Handle("DELETE /api/albums/{id}", limited(albumHandler.Delete))
	mux.Handle("GET /api/albums/{id}/images", protected(albumHandler.ListImages))
	mux.Handle("POST /api/albums/{id}/images", limited(albumHandler.AddImage))
	mux.Handle("POST /api/albums/{id}/share", limited(shareHandler.ShareAlbum))

	mux.Handle("GET /api/images/{id}", protected(feedHandler.GetImage))
	mux.Handle("DELETE /api/images/{id}", limited(albumHandler.DeleteImage))
	mux.Handle("POST /api/images/{id}/share", limited(shareHandler.ShareImage))
	mux.Handle("GET /api/images/{id}/comments", protected(commentHandler.List))
	mux.Handle("POST /api/images/{id}/comments", limited(commentHandler.Add))
	mux.Handle("DELETE /api/comments/{id}", limited(commentHandler.Delete))

	mux.Handle("GET /api/shared", protected(shareHandler.ListShared))
	mux.Handle("GET /api/feed", protected(feedHandler.Feed))

	mux.Handle("GET /api/notifications", protected(notificationHandler.List))
	mux.Handle("GET /api/notifications/unread", protected(notificationHandler.UnreadCount))
	mux.Handle("PUT /api/notifications/{id}/read", protected(notificationHandler.MarkRead))
	mux.Handle("PUT /api/notifications/read-all", protected(notificationHandler.MarkAllRead))

	requestLogger := middleware.NewRequestLogger(logging.Default)
	securityHeaders := middleware.NewSecurityHeaders(cfg.Server.Secure)
	monitoring := middleware.NewMonitoring()

	// Monitoring wraps the mux directly: Authenticate clones the request, and
	// the mux records the matched pattern on the clone it routes.
	handler := requestLogger.Apply(
		securityHeaders.Apply(
			authMw.Authenticate(
				monitoring.Apply(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logging.Info("Server listening", map[string]interface{}{
			"addr":        server.Addr,
			"environment": cfg.Server.Environment,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	return nil
}
