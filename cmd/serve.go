package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photofeed-backend/internal/broker"
	"photofeed-backend/internal/config"
	"photofeed-backend/internal/handlers"
	"photofeed-backend/internal/middleware"
	"photofeed-backend/internal/repository"
	"photofeed-backend/internal/services"
	"photofeed-backend/internal/storage"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(*configPath)
		},
	}
}

func run(configPath string) error {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(context.Background()); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info().Msg("Database connection established")

	// Apply pending migrations
	if err := repository.Migrate(cfg.Database.URL()); err != nil {
		return err
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	// Initialize media storage
	media, uploadDir, err := newMediaStore(cfg)
	if err != nil {
		return err
	}

	// Optional activity-event broker
	var events broker.EventWriter
	if cfg.Kafka.Broker != "" {
		kw := broker.NewKafkaWriter(cfg.Kafka.Broker, cfg.Kafka.Topic)
		defer kw.Close()
		events = kw
		log.Info().Str("broker", cfg.Kafka.Broker).Str("topic", cfg.Kafka.Topic).Msg("Activity events enabled")
	}

	// Optional push notifications
	var pusher services.Pusher
	if cfg.APNs.CertFile != "" {
		p, err := services.NewAPNsPusher(cfg.APNs.CertFile, cfg.APNs.CertPassword, cfg.APNs.Topic, cfg.APNs.Production)
		if err != nil {
			return fmt.Errorf("failed to create APNs pusher: %w", err)
		}
		pusher = p
		log.Info().Str("topic", cfg.APNs.Topic).Msg("Push notifications enabled")
	}

	// Initialize services
	wsHub := services.NewWSHub()
	userService := services.NewUserService(userRepo, events)
	sessionService := services.NewSessionService(sessionRepo, cfg.Session.Secret, cfg.Session.SessionTTL())
	feedService := services.NewFeedService(userRepo, postRepo)
	postService := services.NewPostService(postRepo, userRepo, media, events, wsHub, pusher)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, sessionService)
	postsHandler := handlers.NewPostsHandler(feedService, postService)
	wsHandler := handlers.NewWebSocketHandler(wsHub, sessionService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	requireUser := middleware.RequireUser(sessionService, userService)

	// Routes
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, middleware.LoginPath, http.StatusFound)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Get("/register", authHandler.ShowRegister)
		r.Get("/login", authHandler.ShowLogin)
		r.Get("/add-friend", authHandler.ShowAddFriend)
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Post("/add-friend", authHandler.AddFriend)
			r.Post("/logout", authHandler.Logout)
			r.Post("/push-token", authHandler.UpdatePushToken)
		})
	})

	r.Route("/posts", func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/", postsHandler.Feed)
		r.Get("/create", postsHandler.ShowCreate)
		r.Post("/", postsHandler.Create)
		r.Get("/edit/{id}", postsHandler.ShowEdit)
		r.Post("/edit/{id}", postsHandler.Edit)
		r.Post("/delete/{id}", postsHandler.Delete)
	})

	// Uploaded images are public static files when stored on disk
	if uploadDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
	return nil
}

// newMediaStore builds the configured media store. The returned dir is
// non-empty only for the disk backend, where uploads double as static
// files.
func newMediaStore(cfg *config.Config) (storage.MediaStore, string, error) {
	switch cfg.Storage.Backend {
	case "disk":
		store, err := storage.NewDiskStore(cfg.Storage.UploadDir)
		if err != nil {
			return nil, "", err
		}
		return store, store.Dir(), nil
	case "s3":
		store, err := storage.NewS3Store(context.Background(), storage.S3Options{
			Region:    cfg.Storage.Region,
			Bucket:    cfg.Storage.S3Bucket,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Endpoint:  cfg.Storage.Endpoint,
		})
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	default:
		return nil, "", fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
