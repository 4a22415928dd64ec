package worker

import (
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/intake-engine/internal/config"
)

const defaultPoolSize = 16

// NewLearningPool builds the goroutine pool that runs learning side
// effects. Submissions never block: once MaxBlockingTasks are queued the
// pool rejects and callers run the task themselves.
func NewLearningPool(cfg config.LearningConfig, logger *zap.Logger) (*ants.Pool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("learning_pool")

	size := cfg.PoolSize
	if size <= 0 {
		size = defaultPoolSize
	}
	pool, err := ants.NewPool(size,
		ants.WithExpiryDuration(time.Minute),
		ants.WithNonblocking(true),
		ants.WithMaxBlockingTasks(cfg.MaxBlockingTasks),
		ants.WithPanicHandler(func(p interface{}) {
			logger.Error("learning task panicked", zap.Any("panic", p))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create learning pool: %w", err)
	}
	logger.Info("learning pool started", zap.Int("capacity", size))
	return pool, nil
}
