package locks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-engine/internal/domain"
)

func TestMemoryManager(t *testing.T) {
	t.Run("contended key times out with ErrBusy", func(t *testing.T) {
		mgr := NewMemoryManager(50 * time.Millisecond)

		release, err := mgr.Acquire(context.Background(), "tck-1")
		require.NoError(t, err)
		defer release()

		_, err = mgr.Acquire(context.Background(), "tck-1")
		assert.ErrorIs(t, err, domain.ErrBusy)
	})

	t.Run("different keys do not contend", func(t *testing.T) {
		mgr := NewMemoryManager(50 * time.Millisecond)

		releaseA, err := mgr.Acquire(context.Background(), "tck-a")
		require.NoError(t, err)
		defer releaseA()

		releaseB, err := mgr.Acquire(context.Background(), "tck-b")
		require.NoError(t, err)
		releaseB()
	})

	t.Run("released key can be reacquired", func(t *testing.T) {
		mgr := NewMemoryManager(50 * time.Millisecond)

		release, err := mgr.Acquire(context.Background(), "tck-1")
		require.NoError(t, err)
		release()

		release, err = mgr.Acquire(context.Background(), "tck-1")
		require.NoError(t, err)
		release()
	})

	t.Run("waiter wins once the holder releases", func(t *testing.T) {
		mgr := NewMemoryManager(time.Second)

		release, err := mgr.Acquire(context.Background(), "tck-1")
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() {
			waited, err := mgr.Acquire(context.Background(), "tck-1")
			if err == nil {
				waited()
			}
			done <- err
		}()

		time.Sleep(30 * time.Millisecond)
		release()
		assert.NoError(t, <-done)
	})

	t.Run("cancelled context aborts the wait", func(t *testing.T) {
		mgr := NewMemoryManager(time.Minute)

		release, err := mgr.Acquire(context.Background(), "tck-1")
		require.NoError(t, err)
		defer release()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()
		_, err = mgr.Acquire(ctx, "tck-1")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
