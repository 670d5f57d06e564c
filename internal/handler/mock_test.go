package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/shiftbook/internal/domain"
	"github.com/pkordes/shiftbook/internal/handler"
)

// mockShiftServicer is a test double for handler.ShiftServicer.
// Set only the method fields your test needs.
type mockShiftServicer struct {
	save            func(ctx context.Context, ns domain.Namespace, key string, rec domain.ShiftRecord) (domain.ShiftRecord, error)
	get             func(ctx context.Context, ns domain.Namespace, key string) (domain.ShiftRecord, bool, error)
	getAll          func(ctx context.Context, ns domain.Namespace) (domain.RecordSet, error)
	getByMonth      func(ctx context.Context, ns domain.Namespace, year int, month time.Month) (domain.RecordSet, error)
	getByYear       func(ctx context.Context, ns domain.Namespace, year int) (domain.RecordSet, error)
	delete          func(ctx context.Context, ns domain.Namespace, key string) error
	transfer        func(ctx context.Context, ns domain.Namespace, from, to string, override *domain.ShiftRecord) error
	monthStatistics func(ctx context.Context, ns domain.Namespace, year int, month time.Month) (domain.MonthStatistics, error)
	yearStatistics  func(ctx context.Context, ns domain.Namespace, year int) (domain.YearStatistics, error)
	subscribe       func(ns domain.Namespace, onUpdate func(domain.RecordSet), onError func(error)) (func(), error)
}

func (m *mockShiftServicer) Save(ctx context.Context, ns domain.Namespace, key string, rec domain.ShiftRecord) (domain.ShiftRecord, error) {
	return m.save(ctx, ns, key, rec)
}
func (m *mockShiftServicer) Get(ctx context.Context, ns domain.Namespace, key string) (domain.ShiftRecord, bool, error) {
	return m.get(ctx, ns, key)
}
func (m *mockShiftServicer) GetAll(ctx context.Context, ns domain.Namespace) (domain.RecordSet, error) {
	return m.getAll(ctx, ns)
}
func (m *mockShiftServicer) GetByMonth(ctx context.Context, ns domain.Namespace, year int, month time.Month) (domain.RecordSet, error) {
	return m.getByMonth(ctx, ns, year, month)
}
func (m *mockShiftServicer) GetByYear(ctx context.Context, ns domain.Namespace, year int) (domain.RecordSet, error) {
	return m.getByYear(ctx, ns, year)
}
func (m *mockShiftServicer) Delete(ctx context.Context, ns domain.Namespace, key string) error {
	return m.delete(ctx, ns, key)
}
func (m *mockShiftServicer) Transfer(ctx context.Context, ns domain.Namespace, from, to string, override *domain.ShiftRecord) error {
	return m.transfer(ctx, ns, from, to, override)
}
func (m *mockShiftServicer) MonthStatistics(ctx context.Context, ns domain.Namespace, year int, month time.Month) (domain.MonthStatistics, error) {
	return m.monthStatistics(ctx, ns, year, month)
}
func (m *mockShiftServicer) YearStatistics(ctx context.Context, ns domain.Namespace, year int) (domain.YearStatistics, error) {
	return m.yearStatistics(ctx, ns, year)
}
func (m *mockShiftServicer) Subscribe(ns domain.Namespace, onUpdate func(domain.RecordSet), onError func(error)) (func(), error) {
	return m.subscribe(ns, onUpdate, onError)
}

// compile-time check: mockShiftServicer must satisfy handler.ShiftServicer.
var _ handler.ShiftServicer = (*mockShiftServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mock into the router, the same
// way main.go does in production.
func newHTTPHandler(svc handler.ShiftServicer) http.Handler {
	return newServer(svc).Routes()
}

func newServer(svc handler.ShiftServicer) *handler.Server {
	return handler.NewServer(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func ptr[T any](v T) *T { return &v }

func recordFixture() domain.ShiftRecord {
	ts := time.Date(2025, 2, 1, 6, 30, 0, 0, time.UTC)
	return domain.ShiftRecord{
		Kind:      domain.KindShift,
		ShiftType: domain.ShiftDay,
		Time:      ptr("07:00 - 19:00"),
		CreatedAt: &ts,
		UpdatedAt: &ts,
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, r io.Reader) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(r).Decode(&body))
	return body
}
