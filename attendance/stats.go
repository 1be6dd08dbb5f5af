/*
Package attendance turns daily attendance records into statistics and decides
leave eligibility.

PURPOSE:
  The Aggregator (Compute) and the Eligibility Gate (CanRequestLeave) are
  pure functions over a slice of records. Service wraps them with store
  access and adds attendance marking.

PERCENTAGE:
  percentage = round((present + 0.5 * halfDay) / total * 100)

  - Rounds half up (70.5 -> 71)
  - "leave" and "absent" records count only toward total
  - No records at all -> 100 (a new employee is eligible)

  Arithmetic goes through decimal so 0.5 steps never pick up float error.

EXAMPLES:
  3 present, 1 half-day, 1 absent: (3 + 0.5) / 5 = 70%
  0 records:                       100%
  1 present, 1 leave:              50%

SEE ALSO:
  - service.go: Store-backed Statistics, Mark, Records, Overview
  - leave/service.go: Applies the gate on submission
*/
package attendance

import (
	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/records"
)

// MinLeavePercentage is the lowest attendance percentage that still allows
// a leave request.
const MinLeavePercentage = 75

// Stats is the aggregate view of one employee's attendance.
type Stats struct {
	TotalDays       int  `json:"totalDays"`
	PresentDays     int  `json:"presentDays"`
	AbsentDays      int  `json:"absentDays"`
	HalfDays        int  `json:"halfDays"`
	Percentage      int  `json:"percentage"`
	CanRequestLeave bool `json:"canRequestLeave"`
}

// Compute aggregates the given records. Callers pass only the records of a
// single employee.
func Compute(recs []records.AttendanceRecord) Stats {
	var s Stats
	for _, r := range recs {
		s.TotalDays++
		switch r.Status {
		case records.AttendancePresent:
			s.PresentDays++
		case records.AttendanceAbsent:
			s.AbsentDays++
		case records.AttendanceHalfDay:
			s.HalfDays++
		}
	}
	s.Percentage = Percentage(s.PresentDays, s.HalfDays, s.TotalDays)
	s.CanRequestLeave = CanRequestLeave(s.Percentage)
	return s
}

// Percentage returns round((present + 0.5*half) / total * 100), or 100 when
// total is zero.
func Percentage(present, half, total int) int {
	if total <= 0 {
		return 100
	}
	// 100 * (p + h/2) / t == 50 * (2p + h) / t
	num := decimal.NewFromInt(int64(50 * (2*present + half)))
	p := num.Div(decimal.NewFromInt(int64(total))).Round(0).IntPart()

	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return int(p)
}

// CanRequestLeave is the eligibility gate.
func CanRequestLeave(percentage int) bool {
	return percentage >= MinLeavePercentage
}
