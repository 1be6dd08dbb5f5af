/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Populates the store with realistic demo data through the same services
  the API uses. Upsert-by-date and the eligibility gate apply to demo data
  as well.

AVAILABLE SCENARIOS:
  eligible-employee:   80% attendance, can request leave
  ineligible-employee: 50% attendance, gate rejects leave
  half-days:           Mix of half-days landing exactly on 75%
  leave-backlog:       Eligible employee with pending, approved and rejected leaves

HOW SCENARIOS WORK:
  1. Register demo employee(s) with DemoPassword
  2. Mark attendance day by day
  3. Optionally submit and decide leave requests

  Scenarios do NOT reset the store. Loading the same scenario twice fails
  with 400 because the demo employee code already exists.

USAGE VIA API:
  POST /api/admin/scenarios/load
  {"scenarioId": "leave-backlog"}

SEE ALSO:
  - handlers.go: Uses the same services
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/identity"
	"github.com/warp/attendance-engine/leave"
	"github.com/warp/attendance-engine/records"
)

// DemoPassword is the password of every demo employee.
const DemoPassword = "password123"

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest is the body of POST /api/admin/scenarios/load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenarioId" validate:"required"`
}

// ScenarioResultDTO reports what a scenario created.
type ScenarioResultDTO struct {
	Scenario  ScenarioDTO   `json:"scenario"`
	Employees []EmployeeDTO `json:"employees"`
	Password  string        `json:"password"`
}

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "eligible-employee",
		Name:        "Eligible Employee",
		Description: "Four present days and one absence (80%), may request leave",
	},
	{
		ID:          "ineligible-employee",
		Name:        "Ineligible Employee",
		Description: "Two present days and two absences (50%), leave requests are refused",
	},
	{
		ID:          "half-days",
		Name:        "Half Days",
		Description: "Half-days count as 0.5, landing exactly on the 75% threshold",
	},
	{
		ID:          "leave-backlog",
		Name:        "Leave Backlog",
		Description: "Eligible employee with pending, approved and rejected leave requests",
	},
}

type scenarioLoader func(ctx context.Context, h *Handler) ([]records.Employee, error)

var scenarioLoaders = map[string]scenarioLoader{
	"eligible-employee":   loadEligibleScenario,
	"ineligible-employee": loadIneligibleScenario,
	"half-days":           loadHalfDaysScenario,
	"leave-backlog":       loadLeaveBacklogScenario,
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decode(w, r, &req) {
		return
	}

	load, ok := scenarioLoaders[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", string(records.KindInvalidInput), req.ScenarioID)
		return
	}

	employees, err := load(r.Context(), h)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	result := ScenarioResultDTO{Password: DemoPassword, Employees: make([]EmployeeDTO, len(employees))}
	for i, e := range employees {
		result.Employees[i] = toEmployeeDTO(e)
	}
	for _, s := range scenarios {
		if s.ID == req.ScenarioID {
			result.Scenario = s
		}
	}

	h.Log.Info(r.Context(), "scenario loaded", "scenario", req.ScenarioID, "employees", len(employees))
	writeJSON(w, http.StatusCreated, result)
}

// =============================================================================
// LOADERS
// =============================================================================

func loadEligibleScenario(ctx context.Context, h *Handler) ([]records.Employee, error) {
	emp, err := h.demoEmployee(ctx, "Alice Eligible", "DEMO-ELIGIBLE", "Engineering")
	if err != nil {
		return nil, err
	}
	err = h.markDays(ctx, emp.ID, "2024-01-01",
		records.AttendancePresent, records.AttendancePresent, records.AttendancePresent,
		records.AttendanceAbsent, records.AttendancePresent)
	return []records.Employee{emp}, err
}

func loadIneligibleScenario(ctx context.Context, h *Handler) ([]records.Employee, error) {
	emp, err := h.demoEmployee(ctx, "Ivan Ineligible", "DEMO-INELIGIBLE", "Sales")
	if err != nil {
		return nil, err
	}
	err = h.markDays(ctx, emp.ID, "2024-01-01",
		records.AttendancePresent, records.AttendanceAbsent,
		records.AttendanceAbsent, records.AttendancePresent)
	return []records.Employee{emp}, err
}

func loadHalfDaysScenario(ctx context.Context, h *Handler) ([]records.Employee, error) {
	emp, err := h.demoEmployee(ctx, "Hana Halfday", "DEMO-HALFDAY", "")
	if err != nil {
		return nil, err
	}
	// (2 + 0.5 * 2) / 4 = 75%
	err = h.markDays(ctx, emp.ID, "2024-01-01",
		records.AttendancePresent, records.AttendanceHalfDay,
		records.AttendanceHalfDay, records.AttendancePresent)
	return []records.Employee{emp}, err
}

func loadLeaveBacklogScenario(ctx context.Context, h *Handler) ([]records.Employee, error) {
	emp, err := h.demoEmployee(ctx, "Leo Backlog", "DEMO-BACKLOG", "Operations")
	if err != nil {
		return nil, err
	}
	if err := h.markDays(ctx, emp.ID, "2024-01-01",
		records.AttendancePresent, records.AttendancePresent, records.AttendancePresent); err != nil {
		return nil, err
	}

	requests := []struct {
		start, end string
		decision   records.LeaveStatus
	}{
		{"2024-02-05", "2024-02-07", records.LeaveApproved},
		{"2024-03-11", "2024-03-11", records.LeaveRejected},
		{"2024-04-15", "2024-04-19", ""},
	}
	for _, req := range requests {
		l, err := h.Leaves.Submit(ctx, leave.SubmitInput{
			EmployeeID: emp.ID,
			StartDate:  records.MustParseDate(req.start),
			EndDate:    records.MustParseDate(req.end),
			Reason:     "Demo leave",
		})
		if err != nil {
			return nil, err
		}
		if req.decision == "" {
			continue
		}
		if _, err := h.Leaves.Decide(ctx, l.ID, req.decision); err != nil {
			return nil, err
		}
	}
	return []records.Employee{emp}, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) demoEmployee(ctx context.Context, name, code, department string) (records.Employee, error) {
	return h.Identity.RegisterEmployee(ctx, identity.EmployeeRegistration{
		Name:         name,
		Email:        fmt.Sprintf("%s@demo.local", code),
		Password:     DemoPassword,
		EmployeeCode: code,
		Department:   department,
	})
}

// markDays marks consecutive days starting at first.
func (h *Handler) markDays(ctx context.Context, employeeID, first string, statuses ...records.AttendanceStatus) error {
	day := records.MustParseDate(first)
	for i, status := range statuses {
		_, err := h.Attendance.Mark(ctx, attendance.MarkInput{
			EmployeeID: employeeID,
			Date:       day.AddDays(i),
			Status:     status,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
