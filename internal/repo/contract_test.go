package repo_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/shiftbook/internal/domain"
	"github.com/pkordes/shiftbook/internal/repo"
)

// storeContract exercises the DocumentStore behaviour every backend must share.
// newStore must return an empty store; watch reports whether the backend can
// run Watch in this environment.
func storeContract(t *testing.T, newStore func(t *testing.T) repo.DocumentStore, watch bool) {
	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(context.Background(), "shifts", "2025-02-01")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("UpsertCreates", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		got, err := s.Upsert(ctx, "shifts", "2025-02-01", repo.UpsertOp{
			Patch:    domain.Document{"type": "shift", "shiftType": "day"},
			Defaults: domain.Document{"createdAt": "2025-02-01T08:00:00Z"},
		})

		require.NoError(t, err)
		assert.Equal(t, domain.Document{"type": "shift", "shiftType": "day", "createdAt": "2025-02-01T08:00:00Z"}, got)

		stored, err := s.Get(ctx, "shifts", "2025-02-01")
		require.NoError(t, err)
		assert.Equal(t, got, stored)
	})

	t.Run("UpsertMergesAndKeepsDefaults", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Upsert(ctx, "shifts", "2025-02-01", repo.UpsertOp{
			Patch:    domain.Document{"type": "shift", "shiftType": "day", "notes": "ward 7"},
			Defaults: domain.Document{"createdAt": "first"},
		})
		require.NoError(t, err)

		got, err := s.Upsert(ctx, "shifts", "2025-02-01", repo.UpsertOp{
			Patch:    domain.Document{"type": "shift", "shiftType": "night"},
			Defaults: domain.Document{"createdAt": "second"},
		})

		require.NoError(t, err)
		assert.Equal(t, "night", got["shiftType"])
		assert.Equal(t, "ward 7", got["notes"], "fields absent from the patch are left untouched")
		assert.Equal(t, "first", got["createdAt"], "defaults never overwrite a stored value")
	})

	t.Run("UpsertUnsetsFields", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Upsert(ctx, "shifts", "2025-02-01", repo.UpsertOp{
			Patch: domain.Document{"type": "shift", "shiftType": "day", "isShortShift": true},
		})
		require.NoError(t, err)

		got, err := s.Upsert(ctx, "shifts", "2025-02-01", repo.UpsertOp{
			Patch: domain.Document{"type": "leave", "leaveType": "sick"},
			Unset: []string{"shiftType", "isShortShift"},
		})

		require.NoError(t, err)
		assert.Equal(t, domain.Document{"type": "leave", "leaveType": "sick"}, got)
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Delete(ctx, "shifts", "2025-02-01"), "deleting a missing id is not an error")

		_, err := s.Upsert(ctx, "shifts", "2025-02-01", repo.UpsertOp{Patch: domain.Document{"type": "shift"}})
		require.NoError(t, err)
		require.NoError(t, s.Delete(ctx, "shifts", "2025-02-01"))

		_, err = s.Get(ctx, "shifts", "2025-02-01")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ListIsScopedToCollection", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for _, c := range []struct{ collection, id string }{
			{"shifts", "2025-02-01"},
			{"shifts", "2025-02-02"},
			{"users/alice/shifts", "2025-02-01"},
		} {
			_, err := s.Upsert(ctx, c.collection, c.id, repo.UpsertOp{Patch: domain.Document{"type": "shift"}})
			require.NoError(t, err)
		}

		shared, err := s.List(ctx, "shifts")
		require.NoError(t, err)
		assert.Len(t, shared, 2)

		alice, err := s.List(ctx, "users/alice/shifts")
		require.NoError(t, err)
		assert.Len(t, alice, 1)

		empty, err := s.List(ctx, "users/bob/shifts")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	if !watch {
		return
	}

	t.Run("WatchNotifiesOnChange", func(t *testing.T) {
		s := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var calls atomic.Int32
		ready := make(chan struct{}, 16)
		done := make(chan error, 1)
		go func() {
			done <- s.Watch(ctx, "shifts", func() {
				calls.Add(1)
				select {
				case ready <- struct{}{}:
				default:
				}
			})
		}()

		waitSignal(t, ready) // initial notify once the feed is live

		_, err := s.Upsert(context.Background(), "shifts", "2025-02-01", repo.UpsertOp{Patch: domain.Document{"type": "shift"}})
		require.NoError(t, err)
		waitSignal(t, ready)

		require.NoError(t, s.Delete(context.Background(), "shifts", "2025-02-01"))
		waitSignal(t, ready)

		cancel()
		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(5 * time.Second):
			t.Fatal("Watch did not return after cancel")
		}
		assert.GreaterOrEqual(t, calls.Load(), int32(3))
	})
}

func waitSignal(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
}
