package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// config holds every setting the service reads from the environment.
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

	RedisHost         string // empty disables the history cache
	RedisPort         int
	RedisDB           int
	RedisPassword     string
	RedisPoolSize     int
	RedisMinIdleConns int
	PredictionsTTL    time.Duration

	JWTSecretKey string
	JWTExp       time.Duration
	BcryptCost   int

	AWSRegion          string
	AWSBucket          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSEndpoint        string
	ImageURLTTL        time.Duration

	ModelPath       string
	ModelVersion    string
	ModelInputName  string
	ModelOutputName string
	ONNXLibPath     string

	KafkaBrokers []string // empty disables prediction events
	KafkaTopic   string

	GRPCHealthPort string // empty disables the gRPC health server
	CORSOrigins    []string
}

// parseConfig loads environment variables from a file and returns
// the application, database, cache, auth, storage, model and messaging configuration.
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
	getSeconds := func(key, defaultValue string) (time.Duration, error) {
		v, err := getInt(key, defaultValue)
		return time.Duration(v) * time.Second, err
	}

	// Application config
	cfg.AppHost = getEnv("APP_HOST", "localhost")
	cfg.AppPort = getEnv("APP_PORT", "8080")
	cfg.LogLevel = getEnv("APP_LOG_LEVEL", "info")

	// PostgreSQL config
	cfg.PGHost = getEnv("POSTGRES_HOST", "localhost")
	cfg.PGUser = getEnv("POSTGRES_USER", "user")
	cfg.PGPassword = getEnv("POSTGRES_PASSWORD", "password")
	cfg.PGDB = getEnv("POSTGRES_DB", "database")
	if cfg.PGPort, err = getInt("POSTGRES_PORT", "5432"); err != nil {
		return
	}
	if cfg.PGMaxOpenConns, err = getInt("POSTGRES_MAX_OPEN_CONNS", "16"); err != nil {
		return
	}
	if cfg.PGMaxIdleConns, err = getInt("POSTGRES_MAX_IDLE_CONNS", "8"); err != nil {
		return
	}

	// Redis config
	cfg.RedisHost = os.Getenv("REDIS_HOST")
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
	if cfg.PredictionsTTL, err = getSeconds("PREDICTIONS_CACHE_TTL_SECOND", "300"); err != nil {
		return
	}

	// JWT config
	cfg.JWTSecretKey = getEnv("JWT_SECRET_KEY", "")
	if cfg.JWTExp, err = getSeconds("JWT_EXP_SECOND", "3600"); err != nil {
		return
	}
	if cfg.BcryptCost, err = getInt("BCRYPT_COST", "10"); err != nil {
		return
	}

	// S3 config
	cfg.AWSRegion = getEnv("AWS_REGION_NAME", "us-east-1")
	cfg.AWSBucket = getEnv("AWS_S3_BUCKET_NAME", "")
	cfg.AWSAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AWSSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AWSEndpoint = getEnv("AWS_S3_ENDPOINT", "")
	if cfg.ImageURLTTL, err = getSeconds("IMAGE_URL_TTL_SECOND", "900"); err != nil {
		return
	}

	// Model config
	cfg.ModelPath = getEnv("MODEL_PATH", "models/soybean_resnet50.onnx")
	cfg.ModelVersion = getEnv("MODEL_VERSION", "resnet50_v1")
	cfg.ModelInputName = getEnv("MODEL_INPUT_NAME", "input")
	cfg.ModelOutputName = getEnv("MODEL_OUTPUT_NAME", "output")
	cfg.ONNXLibPath = getEnv("ONNXRUNTIME_LIB_PATH", "")

	// Kafka config
	cfg.KafkaBrokers = splitList(getEnv("KAFKA_BROKERS", ""))
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "prediction.recorded")

	cfg.GRPCHealthPort = getEnv("GRPC_HEALTH_PORT", "")
	cfg.CORSOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "*"))

	switch {
	case cfg.JWTSecretKey == "":
		err = errors.New("JWT_SECRET_KEY is required")
	case cfg.AWSBucket == "":
		err = errors.New("AWS_S3_BUCKET_NAME is required")
	case cfg.JWTExp <= 0:
		err = errors.New("JWT_EXP_SECOND must be positive")
	}
	return
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c config) postgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDB)
}
