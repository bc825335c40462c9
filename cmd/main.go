package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/sbilibin2017/gw-blog/docs"
	"github.com/sbilibin2017/gw-blog/internal/db"
	"github.com/sbilibin2017/gw-blog/internal/handlers"
	"github.com/sbilibin2017/gw-blog/internal/logger"
	"github.com/sbilibin2017/gw-blog/internal/middlewares"
	"github.com/sbilibin2017/gw-blog/internal/password"
	"github.com/sbilibin2017/gw-blog/internal/repositories"
	"github.com/sbilibin2017/gw-blog/internal/services"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

const serviceName = "gw-blog"

// config holds every setting read by parseConfig.
type config struct {
	AppHost  string
	AppPort  string
	LogLevel string

	PGHost         string
	PGPort         int
	PGUser         string
	PGPassword     string
	PGDB           string
	PGMaxOpenConns int
	PGMaxIdleConns int
	PGMigrate      bool

	RedisEnabled      bool
	RedisHost         string
	RedisPort         int
	RedisDB           int
	RedisPassword     string
	RedisPoolSize     int
	RedisMinIdleConns int

	KafkaBrokers []string
	KafkaTopic   string

	TokenTTL         time.Duration
	TokenReuseWindow time.Duration
	PasswordHashCost int
}

// @title gw-blog API
// @version 1.0.0
// @description Multi-user blog with posts and comments
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.basic BasicAuth
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Build version: %s\nBuild date: %s\nBuild commit: %s\n", buildVersion, buildDate, buildCommit)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns the
// application, database, Redis, Kafka and token configuration.
// Variables already set in the environment win over the file.
func parseConfig(path string) (cfg config, err error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}
	getInt := func(key, defaultValue string) (int, error) {
		v, err := strconv.Atoi(getEnv(key, defaultValue))
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return v, nil
	}
	getBool := func(key, defaultValue string) (bool, error) {
		v, err := strconv.ParseBool(getEnv(key, defaultValue))
		if err != nil {
			return false, fmt.Errorf("%s: %w", key, err)
		}
		return v, nil
	}

	// Application config
	cfg.AppHost = getEnv("APP_HOST", "localhost")
	cfg.AppPort = getEnv("APP_PORT", "8080")
	cfg.LogLevel = getEnv("APP_LOG_LEVEL", "info")

	// PostgreSQL config
	cfg.PGHost = getEnv("POSTGRES_HOST", "localhost")
	cfg.PGUser = getEnv("POSTGRES_USER", "user")
	cfg.PGPassword = getEnv("POSTGRES_PASSWORD", "password")
	cfg.PGDB = getEnv("POSTGRES_DB", "blog")
	if cfg.PGPort, err = getInt("POSTGRES_PORT", "5432"); err != nil {
		return
	}
	if cfg.PGMaxOpenConns, err = getInt("POSTGRES_MAX_OPEN_CONNS", "16"); err != nil {
		return
	}
	if cfg.PGMaxIdleConns, err = getInt("POSTGRES_MAX_IDLE_CONNS", "8"); err != nil {
		return
	}
	if cfg.PGMigrate, err = getBool("POSTGRES_MIGRATE", "true"); err != nil {
		return
	}

	// Redis config
	if cfg.RedisEnabled, err = getBool("REDIS_ENABLED", "false"); err != nil {
		return
	}
	cfg.RedisHost = getEnv("REDIS_HOST", "localhost")
	if cfg.RedisPort, err = getInt("REDIS_PORT", "6379"); err != nil {
		return
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", "0"); err != nil {
		return
	}
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	if cfg.RedisPoolSize, err = getInt("REDIS_POOL_SIZE", "10"); err != nil {
		return
	}
	if cfg.RedisMinIdleConns, err = getInt("REDIS_MIN_IDLE_CONNS", "2"); err != nil {
		return
	}

	// Kafka config
	for _, b := range strings.Split(getEnv("KAFKA_BROKERS", ""), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "blog-events")

	// Token and password config
	ttl, err := getInt("TOKEN_TTL_SECOND", "3600")
	if err != nil {
		return
	}
	reuse, err := getInt("TOKEN_REUSE_SECOND", "60")
	if err != nil {
		return
	}
	cfg.TokenTTL = time.Duration(ttl) * time.Second
	cfg.TokenReuseWindow = time.Duration(reuse) * time.Second
	if cfg.PasswordHashCost, err = getInt("PASSWORD_HASH_COST", "10"); err != nil {
		return
	}

	return
}

// run initializes the logger, database, Redis, Kafka writer, and HTTP server.
// It sets up routes, applies middleware, and handles graceful shutdown.
func run(ctx context.Context, cfg config) error {
	// Initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.LogLevel)

	// Connect to PostgreSQL
	logger.Log.Infof("Connecting to PostgreSQL at %s:%d/%s", cfg.PGHost, cfg.PGPort, cfg.PGDB)
	conn, err := db.Connect(ctx, db.DSN(cfg.PGHost, cfg.PGPort, cfg.PGUser, cfg.PGPassword, cfg.PGDB),
		cfg.PGMaxOpenConns, cfg.PGMaxIdleConns)
	if err != nil {
		return err
	}
	defer conn.Close()

	if cfg.PGMigrate {
		if err := db.Migrate(ctx, conn); err != nil {
			return err
		}
	}

	// Connect to Redis
	var rdb *redis.Client
	if cfg.RedisEnabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:         fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			PoolSize:     cfg.RedisPoolSize,
			MinIdleConns: cfg.RedisMinIdleConns,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection error: %w", err)
		}
		defer rdb.Close()
	}

	// Kafka writer
	var kafkaWriter services.KafkaWriter
	if len(cfg.KafkaBrokers) > 0 {
		w := &kafka.Writer{
			Addr:                   kafka.TCP(cfg.KafkaBrokers...),
			Topic:                  cfg.KafkaTopic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		}
		defer w.Close()
		kafkaWriter = w
		logger.Log.Infow("Kafka events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler:           newRouter(cfg, conn, rdb, kafkaWriter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}

// newRouter wires repositories, services and handlers into the HTTP routes.
// rdb and kafkaWriter may be nil.
func newRouter(cfg config, conn *sqlx.DB, rdb *redis.Client, kafkaWriter services.KafkaWriter) http.Handler {
	// Initialize repositories
	txGetter := middlewares.GetTxFromContext
	userReadRepo := repositories.NewUserReadRepository(conn, txGetter)
	userWriteRepo := repositories.NewUserWriteRepository(conn, txGetter)
	postReadRepo := repositories.NewPostReadRepository(conn, txGetter)
	postWriteRepo := repositories.NewPostWriteRepository(conn, txGetter)
	commentReadRepo := repositories.NewCommentReadRepository(conn, txGetter)
	commentWriteRepo := repositories.NewCommentWriteRepository(conn, txGetter)

	var tokenCache services.TokenCache
	if rdb != nil {
		tokenCache = repositories.NewTokenCacheRepository(rdb)
	}

	tokenStore := struct {
		*repositories.UserWriteRepository
		*repositories.UserReadRepository
	}{userWriteRepo, userReadRepo}

	// Initialize services
	tokenManager := services.NewTokenManager(tokenStore, tokenCache, cfg.TokenTTL, cfg.TokenReuseWindow).
		WithAfterCommit(middlewares.AfterCommit)
	authService := services.NewAuthService(userReadRepo, userWriteRepo, password.New(cfg.PasswordHashCost), tokenManager, kafkaWriter)
	postService := services.NewPostService(postReadRepo, postWriteRepo, commentReadRepo, kafkaWriter)
	commentService := services.NewCommentService(postReadRepo, commentReadRepo, commentWriteRepo, kafkaWriter)

	basicAuth := middlewares.AuthMiddleware(middlewares.NewBasicAuthenticator(authService))
	bearerAuth := middlewares.AuthMiddleware(middlewares.NewBearerAuthenticator(authService))
	tx := middlewares.TxMiddleware(conn)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware)
	r.NotFound(handlers.NewNotFoundHandler())

	// Public routes
	r.Get("/", handlers.NewIndexHandler(serviceName))
	r.Get("/posts", handlers.NewListPostsHandler(postService))
	r.Get("/posts/{postID}", handlers.NewGetPostHandler(postService))
	r.With(middlewares.RequireJSON, tx).Post("/users", handlers.NewRegisterHandler(authService))

	// Basic auth
	r.With(basicAuth, tx).Get("/token", handlers.NewTokenHandler(tokenManager))

	// Bearer auth
	r.Group(func(r chi.Router) {
		r.Use(bearerAuth)
		r.Get("/users/me", handlers.NewMeHandler())

		r.Group(func(r chi.Router) {
			r.Use(middlewares.RequireJSON, tx)
			r.Post("/posts", handlers.NewCreatePostHandler(postService))
			r.Put("/posts/{postID}", handlers.NewUpdatePostHandler(postService))
			r.Delete("/posts/{postID}", handlers.NewDeletePostHandler(postService))
			r.Post("/posts/{postID}/comments", handlers.NewCreateCommentHandler(commentService))
			r.Delete("/posts/{postID}/comments/{commentID}", handlers.NewDeleteCommentHandler(commentService))
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.AppHost, cfg.AppPort)),
	))

	return r
}
