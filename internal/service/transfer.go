package service

import (
	"context"
	"fmt"

	"github.com/pkordes/shiftbook/internal/domain"
)

// Transfer moves the record at from to to.
//
// Without override the stored record is copied; a missing source is
// domain.ErrSourceNotFound and nothing is written. With override, override is
// written at to and whatever was at from is discarded.
//
// The destination is always written before the source is deleted, so a
// failure part-way leaves the record at both keys, never at neither. A failed
// delete is reported but the destination write stands.
func (s *ShiftService) Transfer(ctx context.Context, ns domain.Namespace, from, to string, override *domain.ShiftRecord) error {
	if err := checkKey(ns, from); err != nil {
		return fmt.Errorf("service.ShiftService.Transfer: from: %w", err)
	}
	if err := checkKey(ns, to); err != nil {
		return fmt.Errorf("service.ShiftService.Transfer: to: %w", err)
	}

	var rec domain.ShiftRecord
	if override != nil {
		rec = *override
	} else {
		src, found, err := s.Get(ctx, ns, from)
		if err != nil {
			return fmt.Errorf("service.ShiftService.Transfer: %w", err)
		}
		if !found {
			return fmt.Errorf("service.ShiftService.Transfer: %s: %w", from, domain.ErrSourceNotFound)
		}
		rec = src
	}

	if from == to {
		// Deleting the source would delete the only copy.
		if override == nil {
			return nil
		}
		if _, err := s.Save(ctx, ns, to, rec); err != nil {
			return fmt.Errorf("service.ShiftService.Transfer: %w", err)
		}
		return nil
	}

	if _, err := s.Save(ctx, ns, to, rec); err != nil {
		return fmt.Errorf("service.ShiftService.Transfer: %w", err)
	}
	if err := s.Delete(ctx, ns, from); err != nil {
		s.log.ErrorContext(ctx, "transfer left record at both dates", "from", from, "to", to, "error", err)
		return fmt.Errorf("service.ShiftService.Transfer: %w", err)
	}
	return nil
}
