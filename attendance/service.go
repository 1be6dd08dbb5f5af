/*
service.go - Store-backed attendance operations

OPERATIONS:
  Statistics(employeeID): Stats for one employee (NotFound if unknown)
  Mark(input):            Upsert-by-date, keeps the id of an existing record
  Records(employeeID):    The employee's records in collection order
  Overview():             Every employee with their Stats (admin view)

UPSERT RULE:
  At most one record per (employee, date). Marking an already-marked date
  overwrites the status in place; totalDays does not change.

SEE ALSO:
  - stats.go: Compute / CanRequestLeave
  - records/store.go: Update is the only mutation path
*/
package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/warp/attendance-engine/logging"
	"github.com/warp/attendance-engine/records"
)

// Service exposes attendance operations over a shared Store.
type Service struct {
	Store *records.Store
	Log   logging.Logger

	// Now and NewID are replaceable in tests.
	Now   func() time.Time
	NewID func() string
}

// NewService creates a service with the real clock and uuid ids.
func NewService(store *records.Store, log logging.Logger) *Service {
	return &Service{
		Store: store,
		Log:   log,
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

// MarkInput describes one attendance mark.
type MarkInput struct {
	EmployeeID string
	Date       records.Date
	Status     records.AttendanceStatus
}

// EmployeeSummary pairs an employee with their statistics.
type EmployeeSummary struct {
	Employee records.Employee
	Stats    Stats
}

// Statistics returns the aggregate for one employee.
func (s *Service) Statistics(ctx context.Context, employeeID string) (Stats, error) {
	doc, err := s.Store.Snapshot(ctx)
	if err != nil {
		return Stats{}, err
	}
	if doc.FindEmployee(employeeID) == nil {
		return Stats{}, fmt.Errorf("%w: employee %s", records.ErrNotFound, employeeID)
	}
	return Compute(doc.AttendanceFor(employeeID)), nil
}

// Mark records the status for a date, overwriting an earlier mark for the
// same date.
func (s *Service) Mark(ctx context.Context, in MarkInput) (records.AttendanceRecord, error) {
	if in.Date.IsZero() {
		return records.AttendanceRecord{}, fmt.Errorf("%w: date is required", records.ErrInvalidInput)
	}
	if !in.Status.Valid() {
		return records.AttendanceRecord{}, fmt.Errorf("%w: unknown attendance status %q", records.ErrInvalidInput, in.Status)
	}

	var marked records.AttendanceRecord
	err := s.Store.Update(ctx, func(doc *records.Document) error {
		if doc.FindEmployee(in.EmployeeID) == nil {
			return fmt.Errorf("%w: employee %s", records.ErrNotFound, in.EmployeeID)
		}

		if existing := doc.FindAttendance(in.EmployeeID, in.Date); existing != nil {
			existing.Status = in.Status
			marked = *existing
			return nil
		}

		marked = records.AttendanceRecord{
			ID:         s.NewID(),
			EmployeeID: in.EmployeeID,
			Date:       in.Date,
			Status:     in.Status,
			CreatedAt:  s.Now().UTC(),
		}
		doc.Attendance = append(doc.Attendance, marked)
		return nil
	})
	if err != nil {
		return records.AttendanceRecord{}, err
	}

	s.Log.Info(ctx, "attendance marked",
		"employee_id", in.EmployeeID, "date", in.Date.String(), "status", string(in.Status))
	return marked, nil
}

// Records lists an employee's attendance. Unknown employees yield an empty
// list, not an error.
func (s *Service) Records(ctx context.Context, employeeID string) ([]records.AttendanceRecord, error) {
	if employeeID == "" {
		return nil, fmt.Errorf("%w: employee id is required", records.ErrInvalidInput)
	}
	doc, err := s.Store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	recs := doc.AttendanceFor(employeeID)
	if recs == nil {
		recs = []records.AttendanceRecord{}
	}
	return recs, nil
}

// Overview returns every employee with their statistics, in registration order.
func (s *Service) Overview(ctx context.Context) ([]EmployeeSummary, error) {
	doc, err := s.Store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]EmployeeSummary, 0, len(doc.Employees))
	for _, e := range doc.Employees {
		out = append(out, EmployeeSummary{
			Employee: e,
			Stats:    Compute(doc.AttendanceFor(e.ID)),
		})
	}
	return out, nil
}
