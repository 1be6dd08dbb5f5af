/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Request types carry
  `validate` tags checked by go-playground/validator before any service
  call. Response types never expose password hashes.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Response wrappers with a message

TYPES:
  Auth:       RegisterEmployeeRequest, RegisterAdminRequest, LoginRequest, LoginResponse
  Employees:  EmployeeDTO, AdminDTO, EmployeeOverviewDTO
  Attendance: MarkAttendanceRequest, MarkAttendanceResponse
  Leaves:     SubmitLeaveRequest, DecideLeaveRequest, LeaveResponse, DecidedLeaveResponse,
              LeaveDaysDTO
  Admin:      BootstrapResponse
  Errors:     ErrorResponse, FieldErrorDTO

JSON KEYS:
  camelCase, matching the persisted document (employeeId, startDate, ...).

SEE ALSO:
  - handlers.go: Uses these types
  - records/types.go: AttendanceRecord and LeaveRequest are returned as-is
*/
package api

import (
	"time"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/leave"
	"github.com/warp/attendance-engine/records"
)

// =============================================================================
// AUTH
// =============================================================================

// RegisterEmployeeRequest is the body of POST /api/auth/register.
type RegisterEmployeeRequest struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6,max=72"`
	EmployeeCode string `json:"employeeCode" validate:"required"`
	Department   string `json:"department"`
}

// RegisterAdminRequest is the body of POST /api/admin/register.
type RegisterAdminRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest is the body of both login endpoints.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the token and exactly one of Employee / Admin.
type LoginResponse struct {
	Token    string       `json:"token"`
	Employee *EmployeeDTO `json:"employee,omitempty"`
	Admin    *AdminDTO    `json:"admin,omitempty"`
}

// =============================================================================
// EMPLOYEES / ADMINS
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	EmployeeCode string `json:"employeeCode"`
	Department   string `json:"department"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

// EmployeeResponse wraps a registered employee.
type EmployeeResponse struct {
	Message  string      `json:"message"`
	Employee EmployeeDTO `json:"employee"`
}

// AdminDTO represents an admin in API responses.
type AdminDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AdminResponse wraps a registered admin.
type AdminResponse struct {
	Message string   `json:"message"`
	Admin   AdminDTO `json:"admin"`
}

// EmployeeOverviewDTO is one row of the admin employee list.
type EmployeeOverviewDTO struct {
	EmployeeDTO
	AttendancePercentage int  `json:"attendancePercentage"`
	TotalDays            int  `json:"totalDays"`
	PresentDays          int  `json:"presentDays"`
	AbsentDays           int  `json:"absentDays"`
	HalfDays             int  `json:"halfDays"`
	CanRequestLeave      bool `json:"canRequestLeave"`
}

// BootstrapResponse reports the default admin bootstrap. Credentials are
// present only on the call that created the account.
type BootstrapResponse struct {
	Message     string          `json:"message"`
	Created     bool            `json:"created"`
	Credentials *CredentialsDTO `json:"credentials,omitempty"`
}

// CredentialsDTO is the one-time disclosure of the default admin login.
type CredentialsDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// MarkAttendanceRequest is the body of POST /api/attendance/{id}.
type MarkAttendanceRequest struct {
	Date   string `json:"date" validate:"required"`
	Status string `json:"status" validate:"required,oneof=present absent half-day leave"`
}

// MarkAttendanceResponse wraps the upserted record.
type MarkAttendanceResponse struct {
	Message    string                   `json:"message"`
	Attendance records.AttendanceRecord `json:"attendance"`
}

// =============================================================================
// LEAVES
// =============================================================================

// SubmitLeaveRequest is the body of POST /api/leaves/{id}.
type SubmitLeaveRequest struct {
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate" validate:"required"`
	Reason    string `json:"reason" validate:"max=1000"`
}

// LeaveResponse wraps a newly submitted leave request.
type LeaveResponse struct {
	Message string               `json:"message"`
	Leave   records.LeaveRequest `json:"leave"`
}

// DecideLeaveRequest is the body of PATCH /api/admin/leaves.
type DecideLeaveRequest struct {
	LeaveID string `json:"leaveId" validate:"required"`
	Status  string `json:"status" validate:"required,oneof=approved rejected"`
}

// DecidedLeaveResponse wraps a decided, enriched leave request.
type DecidedLeaveResponse struct {
	Message string         `json:"message"`
	Leave   leave.Enriched `json:"leave"`
}

// LeaveDaysDTO is the approved leave-day total for an employee.
type LeaveDaysDTO struct {
	EmployeeID string `json:"employeeId"`
	Days       int    `json:"days"`
	StartDate  string `json:"startDate,omitempty"`
	EndDate    string `json:"endDate,omitempty"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`

	// CurrentPercentage is set when the eligibility gate rejected a leave.
	CurrentPercentage *int `json:"currentPercentage,omitempty"`
}

// FieldErrorDTO describes one failed validation rule.
type FieldErrorDTO struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(e records.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:           e.ID,
		Name:         e.Name,
		Email:        e.Email,
		EmployeeCode: e.EmployeeCode,
		Department:   e.Department,
	}
	if !e.CreatedAt.IsZero() {
		dto.CreatedAt = e.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toAdminDTO(a records.Admin) AdminDTO {
	return AdminDTO{ID: a.ID, Name: a.Name, Email: a.Email}
}

func toOverviewDTO(s attendance.EmployeeSummary) EmployeeOverviewDTO {
	return EmployeeOverviewDTO{
		EmployeeDTO:          toEmployeeDTO(s.Employee),
		AttendancePercentage: s.Stats.Percentage,
		TotalDays:            s.Stats.TotalDays,
		PresentDays:          s.Stats.PresentDays,
		AbsentDays:           s.Stats.AbsentDays,
		HalfDays:             s.Stats.HalfDays,
		CanRequestLeave:      s.Stats.CanRequestLeave,
	}
}
