package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/intake-engine/internal/domain"
)

// CategorySource lists categories with resolution activity since a time.
type CategorySource interface {
	CategoriesSince(ctx context.Context, since time.Time) ([]domain.Category, error)
}

// PatternMiner mines issue patterns for one category.
type PatternMiner interface {
	MinePatterns(ctx context.Context, category domain.Category, subcategory *string) (*domain.IssuePattern, error)
}

// PatternSweep periodically mines patterns for recently active categories.
type PatternSweep struct {
	categories CategorySource
	miner      PatternMiner
	lookback   time.Duration
	timeout    time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

const (
	defaultSweepLookback = 24 * time.Hour
	defaultSweepTimeout  = 5 * time.Minute
)

// NewPatternSweep builds a sweep over the last day of resolutions.
func NewPatternSweep(categories CategorySource, miner PatternMiner, logger *zap.Logger) *PatternSweep {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PatternSweep{
		categories: categories,
		miner:      miner,
		lookback:   defaultSweepLookback,
		timeout:    defaultSweepTimeout,
		logger:     logger.Named("pattern_sweep"),
		now:        time.Now,
	}
}

// Run mines every active category once and returns the number of new
// patterns stored. A failure for one category does not stop the others.
func (s *PatternSweep) Run(ctx context.Context) (int, error) {
	cats, err := s.categories.CategoriesSince(ctx, s.now().Add(-s.lookback))
	if err != nil {
		return 0, fmt.Errorf("list active categories: %w", err)
	}
	created := 0
	for _, cat := range cats {
		if ctx.Err() != nil {
			return created, ctx.Err()
		}
		pattern, err := s.miner.MinePatterns(ctx, cat, nil)
		if err != nil {
			s.logger.Warn("pattern mining failed", zap.String("category", string(cat)), zap.Error(err))
			continue
		}
		if pattern != nil {
			created++
		}
	}
	return created, nil
}

// Start schedules Run on spec (standard five-field cron). The returned
// scheduler must be stopped on shutdown.
func (s *PatternSweep) Start(spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		created, err := s.Run(ctx)
		if err != nil {
			s.logger.Warn("pattern sweep failed", zap.Error(err))
			return
		}
		s.logger.Info("pattern sweep finished", zap.Int("patterns_created", created))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid pattern sweep schedule %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}
