// Package viewstate models what the calendar screen shows: the visible month,
// the selected day, the edit dialog, and transfer mode. Reduce is a pure
// function so any front end (web, TUI, tests) can drive the same rules.
package viewstate

import (
	"time"

	"github.com/pkordes/shiftbook/internal/domain"
)

// View is the screen currently shown.
type View string

const (
	ViewMonth View = "month"
	ViewDay   View = "day"
)

// State is the full, serialisable view state.
type State struct {
	View         View       `json:"view"`
	Year         int        `json:"year"`
	Month        time.Month `json:"month"`
	SelectedDate string     `json:"selectedDate,omitempty"`
	Modal        Modal      `json:"modal"`
	Transfer     Transfer   `json:"transfer"`
}

// Modal is the add/edit dialog. Editing is nil when adding a new record.
// TransferFrom is set when saving the dialog completes a move.
type Modal struct {
	Open         bool                `json:"open"`
	Kind         domain.Kind         `json:"kind,omitempty"`
	Date         string              `json:"date,omitempty"`
	Editing      *domain.ShiftRecord `json:"editing,omitempty"`
	TransferFrom string              `json:"transferFrom,omitempty"`
}

// Transfer is the "pick a destination date" mode.
type Transfer struct {
	Active bool   `json:"active"`
	Source string `json:"source,omitempty"`
}

// New returns the month view of the month containing now.
func New(now time.Time) State {
	return State{View: ViewMonth, Year: now.Year(), Month: now.Month()}
}

// Event is an input to Reduce.
type Event interface{ event() }

// PrevMonth shows the previous month, rolling back a year after January.
type PrevMonth struct{}

// NextMonth shows the next month, rolling over a year after December.
type NextMonth struct{}

// SelectDate is a tap on a calendar day. Outside transfer mode it opens the
// day view. In transfer mode it opens the dialog pre-filled with Source, the
// record currently stored at the transfer source; a nil Source means the
// record has gone and transfer mode ends.
type SelectDate struct {
	Date   string
	Source *domain.ShiftRecord
}

// BackToMonth leaves the day view.
type BackToMonth struct{}

// OpenAdd opens an empty dialog for a new record of Kind at Date.
// An empty Date falls back to the selected day.
type OpenAdd struct {
	Kind domain.Kind
	Date string
}

// OpenEdit opens the dialog on the existing Record at Date.
type OpenEdit struct {
	Date   string
	Record domain.ShiftRecord
}

// CloseModal dismisses the dialog without saving.
type CloseModal struct{}

// StartTransfer enters transfer mode for the record at Source.
type StartTransfer struct {
	Source string
}

// CancelTransfer leaves transfer mode.
type CancelTransfer struct{}

// Saved reports that the dialog's save (or transfer) went through.
type Saved struct{}

func (PrevMonth) event()      {}
func (NextMonth) event()      {}
func (SelectDate) event()     {}
func (BackToMonth) event()    {}
func (OpenAdd) event()        {}
func (OpenEdit) event()       {}
func (CloseModal) event()     {}
func (StartTransfer) event()  {}
func (CancelTransfer) event() {}
func (Saved) event()          {}

// Reduce returns the state that follows s after ev. s is not modified.
func Reduce(s State, ev Event) State {
	switch ev := ev.(type) {
	case PrevMonth:
		if s.Month <= time.January {
			s.Year, s.Month = s.Year-1, time.December
		} else {
			s.Month--
		}

	case NextMonth:
		if s.Month >= time.December {
			s.Year, s.Month = s.Year+1, time.January
		} else {
			s.Month++
		}

	case SelectDate:
		if !s.Transfer.Active {
			s.SelectedDate = ev.Date
			s.View = ViewDay
			break
		}
		if ev.Date == s.Transfer.Source {
			break
		}
		if ev.Source == nil {
			s.Transfer = Transfer{}
			break
		}
		rec := *ev.Source
		s.Modal = Modal{
			Open:         true,
			Kind:         rec.Kind,
			Date:         ev.Date,
			Editing:      &rec,
			TransferFrom: s.Transfer.Source,
		}

	case BackToMonth:
		s.View = ViewMonth
		s.SelectedDate = ""

	case OpenAdd:
		date := ev.Date
		if date == "" {
			date = s.SelectedDate
		}
		s.Modal = Modal{Open: true, Kind: ev.Kind, Date: date}

	case OpenEdit:
		rec := ev.Record
		s.Modal = Modal{Open: true, Kind: rec.Kind, Date: ev.Date, Editing: &rec}

	case CloseModal:
		s.Modal = Modal{}

	case StartTransfer:
		s.Transfer = Transfer{Active: true, Source: ev.Source}
		s.View = ViewMonth
		s.Modal = Modal{}

	case CancelTransfer:
		s.Transfer = Transfer{}

	case Saved:
		s.Modal = Modal{}
		s.Transfer = Transfer{}
		if s.View == ViewDay {
			s.View = ViewMonth
		}
	}
	return s
}
