/*
Package leave implements the leave request lifecycle.

PURPOSE:
  Creates leave requests behind the attendance eligibility gate, records
  admin decisions, lists requests joined with employee display fields, and
  totals approved leave days.

LIFECYCLE:
  pending -> approved
  pending -> rejected

  Decide does NOT guard terminal states: deciding an approved or rejected
  request again overwrites status and bumps updatedAt. Admins rely on this
  to correct mistakes.

SUBMISSION (one Store.Update):
  1. Employee must exist                   -> ErrNotFound
  2. Both dates set, start <= end          -> ErrInvalidInput
  3. Recompute attendance percentage
  4. Gate (>= attendance.MinLeavePercentage) -> *records.IneligibleError
  5. Append pending request, flush

  Overlapping ranges for the same employee are accepted.

ENRICHMENT:
  Employee name/email/code are joined at read time, never stored. A missing
  employee renders as records.UnknownDisplay.

SEE ALSO:
  - attendance/stats.go: Compute and CanRequestLeave
  - records/store.go: Update
*/
package leave

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/logging"
	"github.com/warp/attendance-engine/records"
)

// =============================================================================
// TYPES
// =============================================================================

// SubmitInput is a new leave request.
type SubmitInput struct {
	EmployeeID string
	StartDate  records.Date
	EndDate    records.Date
	Reason     string
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Status     records.LeaveStatus
	EmployeeID string
}

func (f Filter) matches(l records.LeaveRequest) bool {
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.EmployeeID != "" && l.EmployeeID != f.EmployeeID {
		return false
	}
	return true
}

// Enriched is a leave request joined with its employee's display fields.
type Enriched struct {
	records.LeaveRequest
	EmployeeName  string `json:"employeeName"`
	EmployeeEmail string `json:"employeeEmail"`
	EmployeeCode  string `json:"employeeCode"`
}

// Enrich joins l with its employee from doc.
func Enrich(doc *records.Document, l records.LeaveRequest) Enriched {
	e := Enriched{
		LeaveRequest:  l,
		EmployeeName:  records.UnknownDisplay,
		EmployeeEmail: records.UnknownDisplay,
		EmployeeCode:  records.UnknownDisplay,
	}
	if emp := doc.FindEmployee(l.EmployeeID); emp != nil {
		e.EmployeeName = emp.Name
		e.EmployeeEmail = emp.Email
		e.EmployeeCode = emp.EmployeeCode
	}
	return e
}

// =============================================================================
// SERVICE
// =============================================================================

// Service manages leave requests over a shared Store.
type Service struct {
	Store *records.Store
	Log   logging.Logger

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

// Submit creates a pending leave request if the employee passes the gate.
// An ineligible employee gets an *records.IneligibleError and nothing is
// written.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (records.LeaveRequest, error) {
	var created records.LeaveRequest

	err := s.Store.Update(ctx, func(doc *records.Document) error {
		if doc.FindEmployee(in.EmployeeID) == nil {
			return fmt.Errorf("%w: employee %s", records.ErrNotFound, in.EmployeeID)
		}

		if in.StartDate.IsZero() || in.EndDate.IsZero() {
			return fmt.Errorf("%w: start date and end date are required", records.ErrInvalidInput)
		}
		if in.EndDate.Before(in.StartDate) {
			return fmt.Errorf("%w: end date %s is before start date %s",
				records.ErrInvalidInput, in.EndDate, in.StartDate)
		}

		stats := attendance.Compute(doc.AttendanceFor(in.EmployeeID))
		if !stats.CanRequestLeave {
			return &records.IneligibleError{
				EmployeeID: in.EmployeeID,
				Percentage: stats.Percentage,
				Threshold:  attendance.MinLeavePercentage,
			}
		}

		now := s.Now().UTC()
		created = records.LeaveRequest{
			ID:         s.NewID(),
			EmployeeID: in.EmployeeID,
			StartDate:  in.StartDate,
			EndDate:    in.EndDate,
			Reason:     in.Reason,
			Status:     records.LeavePending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		doc.Leaves = append(doc.Leaves, created)
		return nil
	})
	if err != nil {
		var ineligible *records.IneligibleError
		if errors.As(err, &ineligible) {
			s.Log.Info(ctx, "leave rejected by eligibility gate",
				"employee_id", in.EmployeeID, "percentage", ineligible.Percentage)
		}
		return records.LeaveRequest{}, err
	}

	s.Log.Info(ctx, "leave submitted",
		"leave_id", created.ID, "employee_id", created.EmployeeID, "days", created.Days())
	return created, nil
}

// Decide sets the status of a leave request to approved or rejected. The
// current status is not checked.
func (s *Service) Decide(ctx context.Context, leaveID string, status records.LeaveStatus) (Enriched, error) {
	if leaveID == "" {
		return Enriched{}, fmt.Errorf("%w: leave id is required", records.ErrInvalidInput)
	}
	if !status.IsDecision() {
		return Enriched{}, fmt.Errorf("%w: status must be approved or rejected, got %q",
			records.ErrInvalidInput, status)
	}

	var decided Enriched
	err := s.Store.Update(ctx, func(doc *records.Document) error {
		l := doc.FindLeave(leaveID)
		if l == nil {
			return fmt.Errorf("%w: leave %s", records.ErrNotFound, leaveID)
		}
		l.Status = status
		l.UpdatedAt = s.Now().UTC()
		decided = Enrich(doc, *l)
		return nil
	})
	if err != nil {
		return Enriched{}, err
	}

	s.Log.Info(ctx, "leave decided", "leave_id", leaveID, "status", string(status))
	return decided, nil
}

// List returns matching requests, newest createdAt first.
func (s *Service) List(ctx context.Context, f Filter) ([]Enriched, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown leave status %q", records.ErrInvalidInput, f.Status)
	}

	doc, err := s.Store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	out := []Enriched{}
	for _, l := range doc.Leaves {
		if f.matches(l) {
			out = append(out, Enrich(doc, l))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// DaysInRange totals inclusive days over the employee's approved requests.
// With a non-nil window only requests fully inside it count. The total is
// informational: the eligibility gate looks at attendance only.
func (s *Service) DaysInRange(ctx context.Context, employeeID string, window *records.DateRange) (int, error) {
	if employeeID == "" {
		return 0, fmt.Errorf("%w: employee id is required", records.ErrInvalidInput)
	}
	doc, err := s.Store.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return ApprovedDays(doc.Leaves, employeeID, window), nil
}

// ApprovedDays is the pure part of DaysInRange.
func ApprovedDays(leaves []records.LeaveRequest, employeeID string, window *records.DateRange) int {
	total := 0
	for _, l := range leaves {
		if l.EmployeeID != employeeID || l.Status != records.LeaveApproved {
			continue
		}
		if window != nil && !window.Covers(l.StartDate, l.EndDate) {
			continue
		}
		total += l.Days()
	}
	return total
}
