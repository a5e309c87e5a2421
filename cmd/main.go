package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	_ "github.com/sbilibin2017/gw-leaf-classifier/docs"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/classifier"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/facades"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/handlers"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/jwt"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/logger"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/middlewares"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/migrations"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/repositories"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/services"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title gw-leaf-classifier API
// @version 1.0.0
// @description Soybean leaf disease classification service
// @host localhost:8080
// @BasePath /
// @schemes http
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

// run initializes the logger, database, cache, object store, model and HTTP server.
// It sets up routes, applies middleware, and handles graceful shutdown.
func run(ctx context.Context, cfg config) error {
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.LogLevel)

	// Connect to PostgreSQL
	logger.Log.Infow("Connecting to PostgreSQL", "host", cfg.PGHost, "port", cfg.PGPort, "db", cfg.PGDB)
	db, err := sqlx.ConnectContext(ctx, "pgx", cfg.postgresDSN())
	if err != nil {
		return fmt.Errorf("PostgreSQL connection error: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.PGMaxOpenConns)
	db.SetMaxIdleConns(cfg.PGMaxIdleConns)

	if err := migrations.Up(ctx, db.DB); err != nil {
		return err
	}

	// Connect to Redis
	var predictionCache services.PredictionCache
	if cfg.RedisHost != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:         fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			PoolSize:     cfg.RedisPoolSize,
			MinIdleConns: cfg.RedisMinIdleConns,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("Redis connection error: %w", err)
		}
		defer rdb.Close()
		predictionCache = repositories.NewPredictionCacheRepository(rdb, cfg.PredictionsTTL)
	} else {
		logger.Log.Warn("REDIS_HOST is empty, prediction history cache disabled")
	}

	// Kafka producer
	var kafkaWriter services.KafkaWriter
	if len(cfg.KafkaBrokers) > 0 {
		w := &kafka.Writer{
			Addr:                   kafka.TCP(cfg.KafkaBrokers...),
			Topic:                  cfg.KafkaTopic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		}
		defer w.Close()
		kafkaWriter = w
	}

	// Object store
	s3Cfg := facades.S3Config{
		Region:          cfg.AWSRegion,
		Bucket:          cfg.AWSBucket,
		Endpoint:        cfg.AWSEndpoint,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
	}
	s3Client, err := facades.NewS3Client(ctx, s3Cfg)
	if err != nil {
		return err
	}
	imageStore := facades.NewImageStoreS3Facade(s3Client, s3Cfg,
		facades.WithPresigner(s3.NewPresignClient(s3Client)),
	)

	// Model
	clf := classifier.New(func() (classifier.Model, error) {
		m, err := classifier.LoadONNX(classifier.ONNXConfig{
			ModelPath:   cfg.ModelPath,
			LibraryPath: cfg.ONNXLibPath,
			InputName:   cfg.ModelInputName,
			OutputName:  cfg.ModelOutputName,
		})
		if err != nil {
			return nil, err
		}
		return m, nil
	})
	defer clf.Close()
	if err := clf.Warmup(ctx); err != nil {
		logger.Log.Warnw("model warmup failed, will retry on first request", "path", cfg.ModelPath, "error", err)
	}

	// Token codec
	tokens := jwt.New(
		jwt.WithSecretKey(cfg.JWTSecretKey),
		jwt.WithExpiration(cfg.JWTExp),
		jwt.WithIssuer("gw-leaf-classifier"),
	)

	// Initialize repositories
	txManager := repositories.NewTxManager(db)
	userReadRepo := repositories.NewUserReadRepository(db, repositories.TxFromContext)
	userWriteRepo := repositories.NewUserWriteRepository(db, repositories.TxFromContext)
	predictionReadRepo := repositories.NewPredictionReadRepository(db, repositories.TxFromContext)
	predictionWriteRepo := repositories.NewPredictionWriteRepository(db, repositories.TxFromContext)
	feedbackReadRepo := repositories.NewFeedbackReadRepository(db)
	feedbackWriteRepo := repositories.NewFeedbackWriteRepository(db, repositories.TxFromContext)

	// Initialize services
	verifier := services.NewCredentialVerifier(tokens, userReadRepo, cfg.BcryptCost)
	authService := services.NewAuthService(userReadRepo, userWriteRepo, verifier)
	recorder := services.NewClassificationRecorder(txManager, predictionWriteRepo, predictionCache, kafkaWriter)
	predictService := services.NewPredictService(verifier, clf, imageStore, recorder, cfg.ModelVersion)
	predictionService := services.NewPredictionService(predictionReadRepo, predictionCache, imageStore, cfg.ImageURLTTL)
	feedbackService := services.NewFeedbackService(predictionReadRepo, feedbackWriteRepo, feedbackReadRepo)

	// Setup router
	r := newRouter(routes{
		health:          handlers.NewHealthHandler(),
		register:        handlers.NewRegisterHandler(authService),
		login:           handlers.NewLoginHandler(authService),
		getUser:         handlers.NewGetUserHandler(authService),
		me:              handlers.NewMeHandler(authService),
		predict:         handlers.NewPredictHandler(predictService),
		listPredictions: handlers.NewListPredictionsHandler(predictionService),
		imageURL:        handlers.NewImageURLHandler(predictionService),
		createFeedback:  handlers.NewCreateFeedbackHandler(feedbackService),
		listFeedback:    handlers.NewListFeedbackHandler(feedbackService),
		auth:            middlewares.AuthMiddleware(verifier),
		tx:              middlewares.TxMiddleware(db),
		corsOrigins:     cfg.CORSOrigins,
		swaggerURL:      fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.AppHost, cfg.AppPort),
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.AppHost, cfg.AppPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errChan := make(chan error, 2)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	var grpcHealth *healthServer
	if cfg.GRPCHealthPort != "" {
		grpcHealth, err = newHealthServer(net.JoinHostPort(cfg.AppHost, cfg.GRPCHealthPort))
		if err != nil {
			return err
		}
		go func() {
			logger.Log.Infof("gRPC health server listening on %s", grpcHealth.Addr())
			if err := grpcHealth.Serve(); err != nil {
				errChan <- fmt.Errorf("gRPC health server failed: %w", err)
			}
		}()
	}

	go func() {
		logger.Log.Infof("HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping servers...")
	case serveErr = <-errChan:
	}

	if grpcHealth != nil {
		grpcHealth.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return serveErr
}
