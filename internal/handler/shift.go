package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/shiftbook/internal/domain"
)

// transferRequest is the body of POST /shifts/{date}/transfer.
// Record, when present, replaces whatever was at the source date.
type transferRequest struct {
	To     string              `json:"to"`
	Record *domain.ShiftRecord `json:"record,omitempty"`
}

// ListShifts handles GET /shifts.
// Supports ?year= and ?year=&month= to narrow the result to a year or a month.
func (s *Server) ListShifts(w http.ResponseWriter, r *http.Request) {
	var year, month *int
	if err := runtime.BindQueryParameter("form", true, false, "year", r.URL.Query(), &year); err != nil {
		badParameter(w, err)
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "month", r.URL.Query(), &month); err != nil {
		badParameter(w, err)
		return
	}

	ns := namespace(r)
	var (
		set domain.RecordSet
		err error
	)
	switch {
	case month != nil && year == nil:
		badRequest(w, "month requires year")
		return
	case month != nil:
		set, err = s.shifts.GetByMonth(r.Context(), ns, *year, time.Month(*month))
	case year != nil:
		set, err = s.shifts.GetByYear(r.Context(), ns, *year)
	default:
		set, err = s.shifts.GetAll(r.Context(), ns)
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if set == nil {
		set = domain.RecordSet{}
	}
	writeJSON(w, http.StatusOK, set)
}

// GetShift handles GET /shifts/{date}.
func (s *Server) GetShift(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	rec, found, err := s.shifts.Get(r.Context(), namespace(r), date)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !found {
		notFound(w, "no record for "+date)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// PutShift handles PUT /shifts/{date}. Fields missing from the body keep
// their stored values.
func (s *Server) PutShift(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	var body domain.ShiftRecord
	if !decodeBody(w, r, &body) {
		return
	}

	saved, err := s.shifts.Save(r.Context(), namespace(r), date, body)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// DeleteShift handles DELETE /shifts/{date}. Deleting an empty date is a 204 too.
func (s *Server) DeleteShift(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	if err := s.shifts.Delete(r.Context(), namespace(r), date); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TransferShift handles POST /shifts/{date}/transfer.
func (s *Server) TransferShift(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	var body transferRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.To == "" {
		badRequest(w, "to is required")
		return
	}

	if err := s.shifts.Transfer(r.Context(), namespace(r), date, body.To, body.Record); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- request helpers --------------------------------------------------------

// dateParam binds the {date} path segment. The service validates its format.
func dateParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	var date string
	err := runtime.BindStyledParameterWithOptions("simple", "date", chi.URLParam(r, "date"), &date,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		badParameter(w, err)
		return "", false
	}
	return date, true
}

// intParam binds an integer path segment.
func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	var v int
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		badParameter(w, err)
		return 0, false
	}
	return v, true
}

// decodeBody decodes a JSON request body into dst, writing the error response
// itself when it cannot.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "body_too_large",
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	case errors.Is(err, io.EOF):
		badRequest(w, "request body is required")
	default:
		badRequest(w, "malformed request body: "+err.Error())
	}
	return false
}
