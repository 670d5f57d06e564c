package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/pkordes/shiftbook/internal/domain"
)

// Subscribe delivers the full record set of ns to onUpdate now and after every
// change to the namespace, whoever made it. Changes that arrive while a
// snapshot is being read are coalesced into the next one, and every snapshot
// comes from a single store read.
//
// Errors (failed reads, a dropped change feed) go to onError, which may be nil,
// and never end the subscription; a dropped feed is re-established with
// exponential backoff. onUpdate and onError are called from one goroutine, never
// concurrently with each other.
//
// The returned function stops delivery and releases the feed. It is safe to call
// more than once and from inside the callbacks.
func (s *ShiftService) Subscribe(ns domain.Namespace, onUpdate func(domain.RecordSet), onError func(error)) (unsubscribe func(), err error) {
	if err := ns.Validate(); err != nil {
		return nil, fmt.Errorf("service.ShiftService.Subscribe: %w", err)
	}
	if onUpdate == nil {
		return nil, fmt.Errorf("service.ShiftService.Subscribe: %w: onUpdate is required", domain.ErrValidation)
	}
	if onError == nil {
		onError = func(error) {}
	}

	id := uuid.New()
	ctx, cancel := context.WithCancel(context.Background())
	log := s.log.With("subscription", id.String(), "collection", ns.Collection())

	dirty := make(chan struct{}, 1)
	notify := func() {
		select {
		case dirty <- struct{}{}:
		default:
		}
	}
	feedErrs := make(chan error)

	go s.watchLoop(ctx, ns.Collection(), notify, feedErrs)
	go s.deliverLoop(ctx, ns, dirty, feedErrs, onUpdate, onError)

	log.Debug("subscription started")
	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			log.Debug("subscription stopped")
		})
	}, nil
}

// watchLoop keeps the store's change feed open until ctx is done.
func (s *ShiftService) watchLoop(ctx context.Context, collection string, notify func(), feedErrs chan<- error) {
	backoff := retry.WithCappedDuration(s.watchMax, retry.NewExponential(s.watchBase))

	_ = retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := s.store.Watch(ctx, collection, notify)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			err = errors.New("change feed closed")
		}
		s.log.WarnContext(ctx, "shift change feed lost", "collection", collection, "error", err)

		select {
		case feedErrs <- fmt.Errorf("service.ShiftService.Subscribe: %w: %w", domain.ErrStoreUnavailable, err):
		case <-ctx.Done():
			return nil
		}
		return retry.RetryableError(err)
	})
}

// deliverLoop owns both callbacks. It rereads the namespace whenever dirty is signalled.
func (s *ShiftService) deliverLoop(ctx context.Context, ns domain.Namespace, dirty <-chan struct{}, feedErrs <-chan error, onUpdate func(domain.RecordSet), onError func(error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-feedErrs:
			onError(err)
		case <-dirty:
			if ctx.Err() != nil {
				return
			}
			set, err := s.GetAll(ctx, ns)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				onError(fmt.Errorf("service.ShiftService.Subscribe: %w", err))
				continue
			}
			onUpdate(set)
		}
	}
}
