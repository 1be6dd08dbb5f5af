package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/logging"
	"github.com/warp/attendance-engine/records"
)

func newSchedulerStore(t *testing.T) (*records.Store, *records.MemoryBackend) {
	t.Helper()
	backend := records.NewMemoryBackend()
	store := records.NewStore(backend)
	require.NoError(t, store.Load(context.Background()))
	return store, backend
}

func TestFlushScheduler_FlushesPeriodically(t *testing.T) {
	store, backend := newSchedulerStore(t)
	fs := NewFlushScheduler(store, 10*time.Millisecond, logging.Discard())

	fs.Start()
	require.Eventually(t, func() bool { return backend.Writes() >= 2 }, time.Second, 5*time.Millisecond)
	fs.Stop()

	// Stop is idempotent and does a final flush
	writes := backend.Writes()
	fs.Stop()
	assert.Equal(t, writes, backend.Writes())
	assert.GreaterOrEqual(t, fs.Flushes(), 2)
}

func TestFlushScheduler_DisabledWithZeroInterval(t *testing.T) {
	store, backend := newSchedulerStore(t)
	fs := NewFlushScheduler(store, 0, logging.Discard())

	fs.Start()
	fs.Stop()
	assert.Equal(t, 0, backend.Writes())
}

func TestFlushScheduler_RunNowReportsFailure(t *testing.T) {
	store, backend := newSchedulerStore(t)
	fs := NewFlushScheduler(store, time.Hour, logging.Discard())

	backend.FailWrites(true)
	err := fs.RunNow()
	require.Error(t, err)
	assert.Equal(t, records.KindStorage, records.KindOf(err))
	assert.Equal(t, 0, fs.Flushes())

	backend.FailWrites(false)
	require.NoError(t, fs.RunNow())
	assert.Equal(t, 1, backend.Writes())
}
