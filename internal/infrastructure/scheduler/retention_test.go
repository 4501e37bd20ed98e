package scheduler

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/tesoreria/backend/internal/infrastructure/rendering"
)

type fakeArchive struct {
	mu         sync.Mutex
	cleanups   int
	lastMaxAge time.Duration
	cleanupErr error
}

func (f *fakeArchive) Store(ctx context.Context, req *rendering.StoreRequest) (*rendering.StoreResult, error) {
	return &rendering.StoreResult{Path: req.Filename}, nil
}

func (f *fakeArchive) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	return nil, errors.New("not found")
}

func (f *fakeArchive) Delete(ctx context.Context, path string) error { return nil }

func (f *fakeArchive) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleanups++
	f.lastMaxAge = age
	return 3, f.cleanupErr
}

func (f *fakeArchive) GetURL(path string) string { return "/documentos/" + path }

func (f *fakeArchive) cleanupCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cleanups
}

func TestRetentionSweeper_Sweep(t *testing.T) {
	archive := &fakeArchive{}
	cfg := DefaultRetentionSweeperConfig()
	cfg.MaxAge = 30 * 24 * time.Hour

	sweeper := NewRetentionSweeper(cfg, archive, zaptest.NewLogger(t))
	sweeper.Sweep(context.Background())

	assert.Equal(t, 1, archive.cleanupCount())
	assert.Equal(t, 30*24*time.Hour, archive.lastMaxAge)
}

func TestRetentionSweeper_SweepFailureDoesNotPanic(t *testing.T) {
	archive := &fakeArchive{cleanupErr: errors.New("storage unavailable")}
	sweeper := NewRetentionSweeper(DefaultRetentionSweeperConfig(), archive, zaptest.NewLogger(t))

	sweeper.Sweep(context.Background())
	assert.Equal(t, 1, archive.cleanupCount())
}

func TestRetentionSweeper_StartStop(t *testing.T) {
	archive := &fakeArchive{}
	cfg := DefaultRetentionSweeperConfig()
	cfg.CheckInterval = 10 * time.Millisecond

	sweeper := NewRetentionSweeper(cfg, archive, zaptest.NewLogger(t))

	err := sweeper.Start(context.Background())
	assert.NoError(t, err)

	// Second start is a no-op
	err = sweeper.Start(context.Background())
	assert.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err = sweeper.Stop(ctx)
	assert.NoError(t, err)

	// Stop after stop is a no-op
	err = sweeper.Stop(ctx)
	assert.NoError(t, err)
}

func TestRetentionSweeper_StopWithoutStart(t *testing.T) {
	sweeper := NewRetentionSweeper(DefaultRetentionSweeperConfig(), &fakeArchive{}, nil)
	assert.NoError(t, sweeper.Stop(context.Background()))
}
