package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/logger"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/models"
)

// PredictionCacheRepository caches a user's prediction history in Redis.
type PredictionCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration duration for cached histories
}

// NewPredictionCacheRepository creates a new repository instance with the given TTL.
func NewPredictionCacheRepository(client *redis.Client, expiration time.Duration) *PredictionCacheRepository {
	return &PredictionCacheRepository{
		client: client,
		exp:    expiration,
	}
}

func predictionHistoryKey(userID int64) string {
	return fmt.Sprintf("predictions:user:%d", userID)
}

func predictionVersionKey(userID int64) string {
	return fmt.Sprintf("predictions:user:%d:version", userID)
}

var errStaleHistory = errors.New("prediction history changed during read")

// Get returns the cached history. found is false on a cache miss.
func (r *PredictionCacheRepository) Get(ctx context.Context, userID int64) (predictions []models.PredictionDB, found bool, err error) {
	key := predictionHistoryKey(userID)

	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		logger.Log.Debugw("cache miss", "key", key)
		return nil, false, nil
	}
	if err != nil {
		logger.Log.Errorw("cache get failed", "key", key, "error", err)
		return nil, false, err
	}

	if err := json.Unmarshal(val, &predictions); err != nil {
		logger.Log.Errorw("cache entry is corrupt", "key", key, "error", err)
		return nil, false, err
	}

	logger.Log.Debugw("cache hit", "key", key, "count", len(predictions))
	return predictions, true, nil
}

// Version returns the user's history version. A user never invalidated is at 0.
func (r *PredictionCacheRepository) Version(ctx context.Context, userID int64) (int64, error) {
	version, err := r.client.Get(ctx, predictionVersionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return version, err
}

// Set caches the history with the repository TTL if version is still current.
// A history read before the last Invalidate is dropped silently.
func (r *PredictionCacheRepository) Set(ctx context.Context, userID, version int64, predictions []models.PredictionDB) error {
	key := predictionHistoryKey(userID)
	versionKey := predictionVersionKey(userID)

	val, err := json.Marshal(predictions)
	if err != nil {
		return err
	}

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleHistory
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, val, r.exp)
			return nil
		})
		return err
	}, versionKey)
	if errors.Is(err, errStaleHistory) || errors.Is(err, redis.TxFailedErr) {
		logger.Log.Debugw("cache set skipped", "key", key, "version", version)
		return nil
	}

	logger.Log.Debugw("cache set", "key", key, "version", version, "count", len(predictions), "error", err)
	return err
}

// Invalidate drops the cached history and bumps the version so reads that
// started earlier cannot cache their result.
func (r *PredictionCacheRepository) Invalidate(ctx context.Context, userID int64) error {
	key := predictionHistoryKey(userID)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, predictionVersionKey(userID))
		pipe.Del(ctx, key)
		return nil
	})
	logger.Log.Debugw("cache invalidate", "key", key, "error", err)
	return err
}
