package service_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/pkordes/shiftbook/internal/domain"
	"github.com/pkordes/shiftbook/internal/repo"
	"github.com/pkordes/shiftbook/internal/service"
)

// ---- mock store ------------------------------------------------------------

// mockStore is a hand-written test double for repo.DocumentStore. Set only the
// method fields your test needs; unset methods fall through to base.
type mockStore struct {
	base   repo.DocumentStore
	get    func(ctx context.Context, collection, id string) (domain.Document, error)
	upsert func(ctx context.Context, collection, id string, op repo.UpsertOp) (domain.Document, error)
	delete func(ctx context.Context, collection, id string) error
	list   func(ctx context.Context, collection string) (map[string]domain.Document, error)
	watch  func(ctx context.Context, collection string, notify func()) error
}

func (m *mockStore) Get(ctx context.Context, collection, id string) (domain.Document, error) {
	if m.get != nil {
		return m.get(ctx, collection, id)
	}
	return m.base.Get(ctx, collection, id)
}
func (m *mockStore) Upsert(ctx context.Context, collection, id string, op repo.UpsertOp) (domain.Document, error) {
	if m.upsert != nil {
		return m.upsert(ctx, collection, id, op)
	}
	return m.base.Upsert(ctx, collection, id, op)
}
func (m *mockStore) Delete(ctx context.Context, collection, id string) error {
	if m.delete != nil {
		return m.delete(ctx, collection, id)
	}
	return m.base.Delete(ctx, collection, id)
}
func (m *mockStore) List(ctx context.Context, collection string) (map[string]domain.Document, error) {
	if m.list != nil {
		return m.list(ctx, collection)
	}
	return m.base.List(ctx, collection)
}
func (m *mockStore) Watch(ctx context.Context, collection string, notify func()) error {
	if m.watch != nil {
		return m.watch(ctx, collection, notify)
	}
	return m.base.Watch(ctx, collection, notify)
}

// compile-time check: mockStore must satisfy repo.DocumentStore.
var _ repo.DocumentStore = (*mockStore)(nil)

// ---- helpers ---------------------------------------------------------------

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stepClock returns a clock that advances by one minute on every call.
func stepClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 2, 1, 7, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Minute)
		return t
	}
}

func newShiftService(store repo.DocumentStore, opts ...service.Option) *service.ShiftService {
	opts = append([]service.Option{service.WithClock(stepClock())}, opts...)
	return service.NewShiftService(store, discardLogger(), opts...)
}

func ptr[T any](v T) *T { return &v }

func dayShift() domain.ShiftRecord {
	return domain.ShiftRecord{
		Kind:      domain.KindShift,
		ShiftType: domain.ShiftDay,
		Time:      ptr("07:00 - 19:00"),
		Location:  ptr("Ward 7"),
	}
}

func sickLeave() domain.ShiftRecord {
	return domain.ShiftRecord{Kind: domain.KindLeave, LeaveType: domain.LeaveSick}
}

// mustSave saves rec and fails the test on error.
func mustSave(t *testing.T, svc *service.ShiftService, ns domain.Namespace, key string, rec domain.ShiftRecord) domain.ShiftRecord {
	t.Helper()
	got, err := svc.Save(context.Background(), ns, key, rec)
	if err != nil {
		t.Fatalf("save %s: %v", key, err)
	}
	return got
}
