// Package domain contains the core data types for the shift calendar.
// This package has zero external dependencies and is imported by every other
// internal package (repo, service, handler).
package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind says whether a record is a worked shift or a leave day.
type Kind string

const (
	KindShift Kind = "shift"
	KindLeave Kind = "leave"
)

// ShiftType is the duty pattern of a shift record.
type ShiftType string

const (
	ShiftDay      ShiftType = "day"
	ShiftNight    ShiftType = "night"
	ShiftTwilight ShiftType = "twilight"
)

// LeaveType is the reason for a leave record.
type LeaveType string

const (
	LeaveSick          LeaveType = "sick"
	LeaveAnnual        LeaveType = "annual"
	LeaveTraining      LeaveType = "training"
	LeavePreceptorship LeaveType = "preceptorship"
)

// Document field names as they appear on the wire and in the store.
const (
	FieldKind         = "type"
	FieldShiftType    = "shiftType"
	FieldIsShortShift = "isShortShift"
	FieldLeaveType    = "leaveType"
	FieldEventName    = "eventName"
	FieldCreatedAt    = "createdAt"
	FieldUpdatedAt    = "updatedAt"
)

// Document is one JSON-like object as held by the document store.
// A key that is absent means "no value"; the store never holds nulls.
type Document map[string]any

// ShiftRecord is the entry for a single calendar date. The date key is not a
// field: it is the document id, and a RecordSet maps keys to records.
//
// Optional values are pointers so that "absent" and "present but empty/false"
// stay distinguishable; absent fields are left untouched by a merge save.
type ShiftRecord struct {
	Kind Kind `json:"type,omitempty"`

	// Meaningful only when Kind is KindShift.
	ShiftType    ShiftType `json:"shiftType,omitempty"`
	IsShortShift *bool     `json:"isShortShift,omitempty"`

	// Meaningful only when Kind is KindLeave.
	LeaveType LeaveType `json:"leaveType,omitempty"`
	EventName *string   `json:"eventName,omitempty"`

	Time     *string `json:"time,omitempty"`
	Location *string `json:"location,omitempty"`
	Notes    *string `json:"notes,omitempty"`

	// System fields, set by the service on save.
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// RecordSet maps date keys to records. It carries no ordering.
type RecordSet map[string]ShiftRecord

// IsShort reports whether the record is a shortened shift. An absent flag is false.
func (r ShiftRecord) IsShort() bool {
	return r.IsShortShift != nil && *r.IsShortShift
}

// Sanitize returns a copy of r with every field that does not apply to its kind
// removed. A record with an unknown kind keeps neither the shift nor the leave
// fields. Sanitize is idempotent and does not touch the system fields.
func Sanitize(r ShiftRecord) ShiftRecord {
	out := r
	switch r.Kind {
	case KindShift:
		out.LeaveType = ""
		out.EventName = nil
	case KindLeave:
		out.ShiftType = ""
		out.IsShortShift = nil
	default:
		out.ShiftType, out.IsShortShift = "", nil
		out.LeaveType, out.EventName = "", nil
	}
	return out
}

// IrrelevantFields lists the document fields that must not be stored on a
// record of the given kind.
func IrrelevantFields(k Kind) []string {
	switch k {
	case KindShift:
		return []string{FieldLeaveType, FieldEventName}
	case KindLeave:
		return []string{FieldShiftType, FieldIsShortShift}
	default:
		return []string{FieldShiftType, FieldIsShortShift, FieldLeaveType, FieldEventName}
	}
}

// Validate checks that r has a known kind and the subtype that kind requires.
func Validate(r ShiftRecord) error {
	switch r.Kind {
	case KindShift:
		switch r.ShiftType {
		case ShiftDay, ShiftNight, ShiftTwilight:
		case "":
			return fmt.Errorf("%w: shiftType is required for a shift", ErrValidation)
		default:
			return fmt.Errorf("%w: unknown shiftType %q", ErrValidation, r.ShiftType)
		}
		if r.LeaveType != "" || r.EventName != nil {
			return fmt.Errorf("%w: leave fields are not allowed on a shift", ErrValidation)
		}
	case KindLeave:
		switch r.LeaveType {
		case LeaveSick, LeaveAnnual, LeaveTraining, LeavePreceptorship:
		case "":
			return fmt.Errorf("%w: leaveType is required for a leave", ErrValidation)
		default:
			return fmt.Errorf("%w: unknown leaveType %q", ErrValidation, r.LeaveType)
		}
		if r.ShiftType != "" || r.IsShortShift != nil {
			return fmt.Errorf("%w: shift fields are not allowed on a leave", ErrValidation)
		}
	case "":
		return fmt.Errorf("%w: type is required", ErrValidation)
	default:
		return fmt.Errorf("%w: unknown type %q", ErrValidation, r.Kind)
	}
	return nil
}

// Document converts r to its wire shape. Absent fields are omitted.
func (r ShiftRecord) Document() (Document, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("domain.ShiftRecord.Document: %w", err)
	}
	doc := Document{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("domain.ShiftRecord.Document: %w", err)
	}
	return doc, nil
}

// RecordFromDocument decodes a stored document. Unknown fields are ignored.
func RecordFromDocument(doc Document) (ShiftRecord, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return ShiftRecord{}, fmt.Errorf("domain.RecordFromDocument: %w", err)
	}
	var r ShiftRecord
	if err := json.Unmarshal(b, &r); err != nil {
		return ShiftRecord{}, fmt.Errorf("domain.RecordFromDocument: %w", err)
	}
	return r, nil
}

// Between returns the records whose keys fall in [start, end], compared as strings.
func (s RecordSet) Between(start, end string) RecordSet {
	out := RecordSet{}
	for key, r := range s {
		if key >= start && key <= end {
			out[key] = r
		}
	}
	return out
}

// Month returns the records in the given month, using MonthBounds.
func (s RecordSet) Month(year int, month time.Month) RecordSet {
	start, end := MonthBounds(year, month)
	return s.Between(start, end)
}

// Year returns the records in the given year, using YearBounds.
func (s RecordSet) Year(year int) RecordSet {
	start, end := YearBounds(year)
	return s.Between(start, end)
}
