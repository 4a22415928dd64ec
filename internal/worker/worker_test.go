package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/intake-engine/internal/config"
	"github.com/spec-kit/intake-engine/internal/domain"
)

type fixedCategories struct {
	cats  []domain.Category
	err   error
	since time.Time
}

func (f *fixedCategories) CategoriesSince(_ context.Context, since time.Time) ([]domain.Category, error) {
	f.since = since
	return f.cats, f.err
}

type scriptedMiner struct {
	mined []domain.Category
}

func (m *scriptedMiner) MinePatterns(_ context.Context, c domain.Category, _ *string) (*domain.IssuePattern, error) {
	m.mined = append(m.mined, c)
	switch c {
	case domain.CategoryVPN:
		return &domain.IssuePattern{Category: c}, nil
	case domain.CategoryEmail:
		return nil, errors.New("boom")
	}
	return nil, nil
}

func TestPatternSweep_Run(t *testing.T) {
	cats := &fixedCategories{cats: []domain.Category{domain.CategoryVPN, domain.CategoryEmail, domain.CategoryPrinter}}
	miner := &scriptedMiner{}
	sweep := NewPatternSweep(cats, miner, nil)
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	sweep.now = func() time.Time { return now }

	created, err := sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Equal(t, cats.cats, miner.mined)
	assert.Equal(t, now.Add(-24*time.Hour), cats.since)
}

func TestPatternSweep_CategoryLookupFails(t *testing.T) {
	sweep := NewPatternSweep(&fixedCategories{err: errors.New("db down")}, &scriptedMiner{}, nil)
	_, err := sweep.Run(context.Background())
	assert.Error(t, err)
}

func TestPatternSweep_StartRejectsBadSchedule(t *testing.T) {
	sweep := NewPatternSweep(&fixedCategories{}, &scriptedMiner{}, nil)
	_, err := sweep.Start("every now and then")
	assert.Error(t, err)

	c, err := sweep.Start("0 * * * *")
	require.NoError(t, err)
	c.Stop()
}

func TestLearningPool_RunsTasks(t *testing.T) {
	pool, err := NewLearningPool(config.LearningConfig{PoolSize: 2, MaxBlockingTasks: 4}, nil)
	require.NoError(t, err)
	defer pool.Release()

	var wg sync.WaitGroup
	var mu sync.Mutex
	ran := 0
	for i := 0; i < 2; i++ {
		wg.Add(1)
		require.NoError(t, pool.Submit(func() {
			defer wg.Done()
			mu.Lock()
			ran++
			mu.Unlock()
		}))
	}
	wg.Wait()
	assert.Equal(t, 2, ran)
}

type countingRegistrar struct{ calls int }

func (r *countingRegistrar) RegisterHandlers() { r.calls++ }

type recordingDrainer struct {
	timeout time.Duration
	err     error
}

func (d *recordingDrainer) ReleaseTimeout(timeout time.Duration) error {
	d.timeout = timeout
	return d.err
}

func TestBackground_StartAndStop(t *testing.T) {
	registrar := &countingRegistrar{}
	drainer := &recordingDrainer{}
	bg, err := StartBackground(BackgroundConfig{
		Notifications: registrar,
		Sweep:         NewPatternSweep(&fixedCategories{}, &scriptedMiner{}, nil),
		SweepSchedule: "*/5 * * * *",
		Pool:          drainer,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, registrar.calls)
	require.NotNil(t, bg.scheduler)
	assert.Len(t, bg.scheduler.Entries(), 1)

	bg.Stop(3 * time.Second)
	assert.Equal(t, 3*time.Second, drainer.timeout)
}

func TestBackground_BadScheduleFails(t *testing.T) {
	_, err := StartBackground(BackgroundConfig{
		Sweep:         NewPatternSweep(&fixedCategories{}, &scriptedMiner{}, nil),
		SweepSchedule: "whenever",
	})
	assert.Error(t, err)
}

func TestBackground_StopToleratesClosedPool(t *testing.T) {
	bg, err := StartBackground(BackgroundConfig{Pool: &recordingDrainer{err: ants.ErrPoolClosed}})
	require.NoError(t, err)
	assert.Nil(t, bg.scheduler)
	bg.Stop(time.Second)

	var nilBackground *Background
	nilBackground.Stop(time.Second)
}
