package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pkordes/shiftbook/internal/domain"
)

// MonthStatistics tallies one month, read with GetByMonth.
func (s *ShiftService) MonthStatistics(ctx context.Context, ns domain.Namespace, year int, month time.Month) (domain.MonthStatistics, error) {
	set, err := s.GetByMonth(ctx, ns, year, month)
	if err != nil {
		return domain.MonthStatistics{}, fmt.Errorf("service.ShiftService.MonthStatistics: %w", err)
	}
	return domain.ComputeMonthStatistics(set), nil
}

// YearStatistics tallies each month of a year from a single GetByYear read.
func (s *ShiftService) YearStatistics(ctx context.Context, ns domain.Namespace, year int) (domain.YearStatistics, error) {
	set, err := s.GetByYear(ctx, ns, year)
	if err != nil {
		return domain.YearStatistics{}, fmt.Errorf("service.ShiftService.YearStatistics: %w", err)
	}
	return domain.ComputeYearStatistics(year, set), nil
}
