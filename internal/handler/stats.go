package handler

import (
	"net/http"
	"time"
)

// GetYearStatistics handles GET /stats/{year}.
func (s *Server) GetYearStatistics(w http.ResponseWriter, r *http.Request) {
	year, ok := intParam(w, r, "year")
	if !ok {
		return
	}

	st, err := s.shifts.YearStatistics(r.Context(), namespace(r), year)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// GetMonthStatistics handles GET /stats/{year}/{month}. month is 1-12.
func (s *Server) GetMonthStatistics(w http.ResponseWriter, r *http.Request) {
	year, ok := intParam(w, r, "year")
	if !ok {
		return
	}
	month, ok := intParam(w, r, "month")
	if !ok {
		return
	}

	st, err := s.shifts.MonthStatistics(r.Context(), namespace(r), year, time.Month(month))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
