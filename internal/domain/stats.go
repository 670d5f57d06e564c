package domain

import "time"

// MonthStatistics is a derived, never-persisted tally over one month of records.
type MonthStatistics struct {
	Total          int `json:"total"`
	DayShifts      int `json:"dayShifts"`
	NightShifts    int `json:"nightShifts"`
	TwilightShifts int `json:"twilightShifts"`
	ShortShifts    int `json:"shortShifts"`
	Leaves         int `json:"leaves"`
	SickLeave      int `json:"sickLeave"`
	AnnualLeave    int `json:"annualLeave"`
	Training       int `json:"training"`
	Preceptorship  int `json:"preceptorship"`
}

// YearStatistics holds the month tallies of one year. Months[0] is January.
type YearStatistics struct {
	Year   int               `json:"year"`
	Months []MonthStatistics `json:"months"`
	Total  MonthStatistics   `json:"total"`
}

// ComputeMonthStatistics tallies a record set that is already restricted to one month.
// A leave counts only on the leave side; anything else counts on the shift side.
// A short shift also counts toward its shift type.
func ComputeMonthStatistics(set RecordSet) MonthStatistics {
	st := MonthStatistics{Total: len(set)}
	for _, r := range set {
		if r.Kind == KindLeave {
			st.Leaves++
			switch r.LeaveType {
			case LeaveSick:
				st.SickLeave++
			case LeaveAnnual:
				st.AnnualLeave++
			case LeaveTraining:
				st.Training++
			case LeavePreceptorship:
				st.Preceptorship++
			}
			continue
		}
		switch r.ShiftType {
		case ShiftDay:
			st.DayShifts++
		case ShiftNight:
			st.NightShifts++
		case ShiftTwilight:
			st.TwilightShifts++
		}
		if r.IsShort() {
			st.ShortShifts++
		}
	}
	return st
}

// ComputeYearStatistics splits a year's records by month and tallies each month.
func ComputeYearStatistics(year int, set RecordSet) YearStatistics {
	ys := YearStatistics{Year: year, Months: make([]MonthStatistics, 12)}
	for m := time.January; m <= time.December; m++ {
		ms := ComputeMonthStatistics(set.Month(year, m))
		ys.Months[m-1] = ms
		ys.Total.add(ms)
	}
	return ys
}

func (m *MonthStatistics) add(o MonthStatistics) {
	m.Total += o.Total
	m.DayShifts += o.DayShifts
	m.NightShifts += o.NightShifts
	m.TwilightShifts += o.TwilightShifts
	m.ShortShifts += o.ShortShifts
	m.Leaves += o.Leaves
	m.SickLeave += o.SickLeave
	m.AnnualLeave += o.AnnualLeave
	m.Training += o.Training
	m.Preceptorship += o.Preceptorship
}
