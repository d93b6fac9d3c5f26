package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authui/internal/db"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakePruner struct {
	cutoff  time.Time
	removed int64
	err     error
}

func (f *fakePruner) PruneRegistrationIntents(cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.removed, f.err
}

func TestHandlerRegistry(t *testing.T) {
	r := NewHandlerRegistry()
	r.Register("b", HandlerFunc(func(context.Context) error { return nil }))
	r.Register("a", HandlerFunc(func(context.Context) error { return nil }))

	assert.True(t, r.HasHandler("a"))
	assert.False(t, r.HasHandler("c"))
	assert.Equal(t, []string{"a", "b"}, r.Types())

	_, err := r.GetHandler("c")
	assert.EqualError(t, err, "unknown job type: c")
}

func TestPruneRegistrationsHandler(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &fakePruner{removed: 3}
	h := NewPruneRegistrationsHandler(store, 24*time.Hour, discardLogger())
	h.now = func() time.Time { return now }

	require.NoError(t, h.Handle(context.Background()))
	assert.Equal(t, now.Add(-24*time.Hour), store.cutoff)

	store.err = errors.New("disk full")
	assert.EqualError(t, h.Handle(context.Background()), "disk full")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, h.Handle(ctx), context.Canceled)
}

func TestPruneRegistrationsHandler_WithDatabase(t *testing.T) {
	database, err := db.Init(filepath.Join(t.TempDir(), "authui.db"))
	require.NoError(t, err)
	defer database.Close()

	stale := db.NewRegistrationIntent("stale@x.io", "", "https://id")
	stale.CreatedAt = time.Now().UTC().Add(-31 * 24 * time.Hour)
	require.NoError(t, database.CreateRegistrationIntent(stale))
	require.NoError(t, database.CreateRegistrationIntent(db.NewRegistrationIntent("new@x.io", "", "https://id")))

	registry := NewHandlerRegistry()
	registry.Register(JobTypePruneRegistrations, NewPruneRegistrationsHandler(database, 30*24*time.Hour, discardLogger()))
	s := NewScheduler(registry, time.Second, discardLogger())

	require.NoError(t, s.RunNow(context.Background(), JobTypePruneRegistrations))

	count, err := database.CountRegistrationIntents()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestScheduler_Schedule(t *testing.T) {
	registry := NewHandlerRegistry()
	registry.Register("noop", HandlerFunc(func(context.Context) error { return nil }))
	s := NewScheduler(registry, time.Second, discardLogger())

	assert.Error(t, s.Schedule("missing", "@hourly"))
	assert.Error(t, s.Schedule("noop", "not a cron spec"))
	require.NoError(t, s.Schedule("noop", "@hourly"))

	s.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, s.Stop(ctx))
	}()

	next := s.Next("noop")
	assert.False(t, next.IsZero())
	assert.WithinDuration(t, time.Now(), next, time.Hour+time.Second)
	assert.True(t, s.Next("missing").IsZero())
}

func TestScheduler_RunsOnSchedule(t *testing.T) {
	var runs int32
	registry := NewHandlerRegistry()
	registry.Register("tick", HandlerFunc(func(context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	}))
	s := NewScheduler(registry, time.Second, discardLogger())
	require.NoError(t, s.Schedule("tick", "@every 1s"))

	s.Start()
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) > 0 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestScheduler_RunNowTimeout(t *testing.T) {
	registry := NewHandlerRegistry()
	registry.Register("slow", HandlerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	s := NewScheduler(registry, 20*time.Millisecond, discardLogger())

	assert.ErrorIs(t, s.RunNow(context.Background(), "slow"), context.DeadlineExceeded)
	assert.Error(t, s.RunNow(context.Background(), "missing"))
}
