// Package service contains the business logic for the shift calendar.
// Services validate inputs, enforce record-shape rules, and orchestrate store
// calls. No SQL lives here: services depend on repo.DocumentStore, not on a backend.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkordes/shiftbook/internal/domain"
	"github.com/pkordes/shiftbook/internal/repo"
)

// ShiftService is the persistence gateway for shift and leave records. Every
// method returns an error instead of panicking; backend failures are wrapped
// in domain.ErrStoreUnavailable. Nothing is retried.
type ShiftService struct {
	store repo.DocumentStore
	log   *slog.Logger
	now   func() time.Time

	watchBase time.Duration
	watchMax  time.Duration
}

// Option customises a ShiftService.
type Option func(*ShiftService)

// WithClock replaces time.Now as the source of createdAt/updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *ShiftService) { s.now = now }
}

// WithWatchBackoff sets the delay bounds used when a subscription's change
// feed has to be re-established.
func WithWatchBackoff(base, maxDelay time.Duration) Option {
	return func(s *ShiftService) { s.watchBase, s.watchMax = base, maxDelay }
}

// NewShiftService constructs a ShiftService backed by the provided store.
func NewShiftService(store repo.DocumentStore, log *slog.Logger, opts ...Option) *ShiftService {
	s := &ShiftService{
		store:     store,
		log:       log,
		now:       time.Now,
		watchBase: 500 * time.Millisecond,
		watchMax:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save sanitizes rec, validates it, and merges it into the document at key.
// createdAt is set only when the document did not exist; updatedAt is always
// refreshed. Fields absent from rec keep their stored values, except fields
// that do not apply to rec's kind, which are removed.
// Returns the full stored record.
func (s *ShiftService) Save(ctx context.Context, ns domain.Namespace, key string, rec domain.ShiftRecord) (domain.ShiftRecord, error) {
	if err := checkKey(ns, key); err != nil {
		return domain.ShiftRecord{}, fmt.Errorf("service.ShiftService.Save: %w", err)
	}

	clean := domain.Sanitize(rec)
	clean.CreatedAt, clean.UpdatedAt = nil, nil
	if err := domain.Validate(clean); err != nil {
		return domain.ShiftRecord{}, fmt.Errorf("service.ShiftService.Save: %w", err)
	}

	now := s.now().UTC()
	clean.UpdatedAt = &now
	patch, err := clean.Document()
	if err != nil {
		return domain.ShiftRecord{}, fmt.Errorf("service.ShiftService.Save: %w", err)
	}
	defaults, err := domain.ShiftRecord{CreatedAt: &now}.Document()
	if err != nil {
		return domain.ShiftRecord{}, fmt.Errorf("service.ShiftService.Save: %w", err)
	}

	stored, err := s.store.Upsert(ctx, ns.Collection(), key, repo.UpsertOp{
		Patch:    patch,
		Unset:    domain.IrrelevantFields(clean.Kind),
		Defaults: defaults,
	})
	if err != nil {
		return domain.ShiftRecord{}, s.storeFailure(ctx, "Save", key, err)
	}

	out, err := domain.RecordFromDocument(stored)
	if err != nil {
		return domain.ShiftRecord{}, fmt.Errorf("service.ShiftService.Save: %w", err)
	}
	return out, nil
}

// Get returns the record at key. A missing record is not an error: found is false.
func (s *ShiftService) Get(ctx context.Context, ns domain.Namespace, key string) (rec domain.ShiftRecord, found bool, err error) {
	if err := checkKey(ns, key); err != nil {
		return domain.ShiftRecord{}, false, fmt.Errorf("service.ShiftService.Get: %w", err)
	}

	doc, err := s.store.Get(ctx, ns.Collection(), key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ShiftRecord{}, false, nil
		}
		return domain.ShiftRecord{}, false, s.storeFailure(ctx, "Get", key, err)
	}

	rec, err = domain.RecordFromDocument(doc)
	if err != nil {
		return domain.ShiftRecord{}, false, fmt.Errorf("service.ShiftService.Get: %w", err)
	}
	return rec, true, nil
}

// GetAll returns every record in the namespace.
// Always returns a non-nil set so callers can safely range over it.
func (s *ShiftService) GetAll(ctx context.Context, ns domain.Namespace) (domain.RecordSet, error) {
	if err := ns.Validate(); err != nil {
		return nil, fmt.Errorf("service.ShiftService.GetAll: %w", err)
	}

	docs, err := s.store.List(ctx, ns.Collection())
	if err != nil {
		return nil, s.storeFailure(ctx, "GetAll", "", err)
	}

	set := make(domain.RecordSet, len(docs))
	for key, doc := range docs {
		rec, err := domain.RecordFromDocument(doc)
		if err != nil {
			// A document another client wrote in a shape we cannot read.
			s.log.WarnContext(ctx, "skipping unreadable shift document",
				"collection", ns.Collection(), "date", key, "error", err)
			continue
		}
		set[key] = rec
	}
	return set, nil
}

// GetByMonth returns the records whose keys fall in [YYYY-MM-01, YYYY-MM-31].
// The scan is full and the filter is client-side.
func (s *ShiftService) GetByMonth(ctx context.Context, ns domain.Namespace, year int, month time.Month) (domain.RecordSet, error) {
	if err := domain.ValidateMonth(month); err != nil {
		return nil, fmt.Errorf("service.ShiftService.GetByMonth: %w", err)
	}
	all, err := s.GetAll(ctx, ns)
	if err != nil {
		return nil, fmt.Errorf("service.ShiftService.GetByMonth: %w", err)
	}
	return all.Month(year, month), nil
}

// GetByYear returns the records whose keys fall in [YYYY-01-01, YYYY-12-31].
func (s *ShiftService) GetByYear(ctx context.Context, ns domain.Namespace, year int) (domain.RecordSet, error) {
	all, err := s.GetAll(ctx, ns)
	if err != nil {
		return nil, fmt.Errorf("service.ShiftService.GetByYear: %w", err)
	}
	return all.Year(year), nil
}

// Delete removes the record at key. Deleting a missing record succeeds.
func (s *ShiftService) Delete(ctx context.Context, ns domain.Namespace, key string) error {
	if err := checkKey(ns, key); err != nil {
		return fmt.Errorf("service.ShiftService.Delete: %w", err)
	}
	if err := s.store.Delete(ctx, ns.Collection(), key); err != nil {
		return s.storeFailure(ctx, "Delete", key, err)
	}
	return nil
}

// storeFailure logs a backend error and wraps it as domain.ErrStoreUnavailable.
func (s *ShiftService) storeFailure(ctx context.Context, op, key string, err error) error {
	s.log.ErrorContext(ctx, "shift store operation failed", "op", op, "date", key, "error", err)
	return fmt.Errorf("service.ShiftService.%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

func checkKey(ns domain.Namespace, key string) error {
	if err := ns.Validate(); err != nil {
		return err
	}
	_, err := domain.ParseDateKey(key)
	return err
}
