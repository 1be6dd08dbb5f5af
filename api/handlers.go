/*
handlers.go - HTTP API handlers for the attendance and leave engine

PURPOSE:
  Exposes the attendance, leave and identity services via a JSON REST API.
  Handles HTTP request/response, validation, and maps domain errors to
  status codes. No business rule lives here.

ENDPOINTS:
  Public:
    GET    /healthz                         Liveness (store loaded)
    POST   /api/auth/register               Register employee
    POST   /api/auth/login                  Employee login
    POST   /api/admin/login                 Admin login
    GET    /api/admin/bootstrap             Ensure default admin exists

  Employee or admin (self only for employees):
    GET    /api/attendance/{id}             Attendance statistics
    POST   /api/attendance/{id}             Mark attendance (upsert by date)
    GET    /api/attendance/{id}/records     Attendance records
    GET    /api/leaves/{id}?status=         Employee's leave requests
    POST   /api/leaves/{id}                 Submit leave request
    GET    /api/employees/{id}/leave-days   Approved leave days (?start=&end=)

  Admin:
    POST   /api/admin/register              Register admin
    GET    /api/admin/employees             Employees with statistics
    GET    /api/admin/leaves?status=        Enriched leaves, newest first
    PATCH  /api/admin/leaves                Approve / reject
    GET    /api/admin/scenarios             List demo scenarios
    POST   /api/admin/scenarios/load        Load a demo scenario

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Attendance, Leaves, Identity: domain services
  - Store: shared Record Store (health check)
  - validate: request DTO validator

ERROR HANDLING:
  Errors are returned as ErrorResponse with a stable code:
  - 400 invalid_input:    Validation errors, malformed dates, duplicates
  - 401 unauthorized:     Bad credentials or token
  - 403 forbidden:        Eligibility gate (body has currentPercentage)
  - 403 access_denied:    Employee touching someone else's records
  - 404 not_found:        Unknown employee or leave
  - 500 storage_failure:  Backend read/write failed (mutation not committed)

SEE ALSO:
  - dto.go: Request/response data structures
  - middleware.go: Bearer authentication and access checks
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/identity"
	"github.com/warp/attendance-engine/leave"
	"github.com/warp/attendance-engine/logging"
	"github.com/warp/attendance-engine/records"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      *records.Store
	Attendance *attendance.Service
	Leaves     *leave.Service
	Identity   *identity.Service
	Log        logging.Logger

	validate *validator.Validate
}

// NewHandler creates a handler over the given services.
func NewHandler(store *records.Store, att *attendance.Service, leaves *leave.Service, id *identity.Service, log logging.Logger) *Handler {
	v := validator.New()
	// Report JSON field names in validation errors.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{
		Store:      store,
		Attendance: att,
		Leaves:     leaves,
		Identity:   id,
		Log:        log,
		validate:   v,
	}
}

// Health reports whether the store is loaded and readable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Store.Snapshot(r.Context()); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// RegisterEmployee creates a new employee account.
func (h *Handler) RegisterEmployee(w http.ResponseWriter, r *http.Request) {
	var req RegisterEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}

	emp, err := h.Identity.RegisterEmployee(r.Context(), identity.EmployeeRegistration{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		EmployeeCode: req.EmployeeCode,
		Department:   req.Department,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, EmployeeResponse{
		Message:  "Employee registered successfully",
		Employee: toEmployeeDTO(emp),
	})
}

// LoginEmployee exchanges employee credentials for a token.
func (h *Handler) LoginEmployee(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.Identity.LoginEmployee(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	dto := toEmployeeDTO(session.Employee)
	writeJSON(w, http.StatusOK, LoginResponse{Token: session.Token, Employee: &dto})
}

// LoginAdmin exchanges admin credentials for a token.
func (h *Handler) LoginAdmin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.Identity.LoginAdmin(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	dto := toAdminDTO(session.Admin)
	writeJSON(w, http.StatusOK, LoginResponse{Token: session.Token, Admin: &dto})
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// BootstrapAdmin ensures the default admin exists.
// GET /api/admin/bootstrap
func (h *Handler) BootstrapAdmin(w http.ResponseWriter, r *http.Request) {
	result, err := h.Identity.BootstrapAdmin(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	if !result.Created {
		writeJSON(w, http.StatusOK, BootstrapResponse{Message: "Admin already exists"})
		return
	}
	writeJSON(w, http.StatusOK, BootstrapResponse{
		Message:     "Default admin created",
		Created:     true,
		Credentials: &CredentialsDTO{Email: result.Email, Password: result.Password},
	})
}

// RegisterAdmin creates another admin account.
func (h *Handler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	var req RegisterAdminRequest
	if !h.decode(w, r, &req) {
		return
	}

	admin, err := h.Identity.RegisterAdmin(r.Context(), identity.AdminRegistration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, AdminResponse{
		Message: "Admin registered successfully",
		Admin:   toAdminDTO(admin),
	})
}

// ListEmployees returns every employee with attendance statistics.
// GET /api/admin/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.Attendance.Overview(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	dtos := make([]EmployeeOverviewDTO, len(summaries))
	for i, s := range summaries {
		dtos[i] = toOverviewDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListLeaves returns all leave requests, newest first, optionally by status.
// GET /api/admin/leaves?status=pending
func (h *Handler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	leaves, err := h.Leaves.List(r.Context(), leave.Filter{
		Status: records.LeaveStatus(r.URL.Query().Get("status")),
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leaves)
}

// DecideLeave approves or rejects a leave request.
// PATCH /api/admin/leaves {"leaveId": "...", "status": "approved"}
func (h *Handler) DecideLeave(w http.ResponseWriter, r *http.Request) {
	var req DecideLeaveRequest
	if !h.decode(w, r, &req) {
		return
	}

	decided, err := h.Leaves.Decide(r.Context(), req.LeaveID, records.LeaveStatus(req.Status))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, DecidedLeaveResponse{
		Message: fmt.Sprintf("Leave %s successfully", decided.Status),
		Leave:   decided,
	})
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// GetAttendanceStats returns the employee's attendance statistics.
// GET /api/attendance/{id}
func (h *Handler) GetAttendanceStats(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := employeeParam(w, r)
	if !ok {
		return
	}

	stats, err := h.Attendance.Statistics(r.Context(), employeeID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// MarkAttendance records the status for one date.
// POST /api/attendance/{id} {"date": "2024-03-01", "status": "present"}
func (h *Handler) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := employeeParam(w, r)
	if !ok {
		return
	}
	var req MarkAttendanceRequest
	if !h.decode(w, r, &req) {
		return
	}

	date, err := records.ParseDate(req.Date)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	rec, err := h.Attendance.Mark(r.Context(), attendance.MarkInput{
		EmployeeID: employeeID,
		Date:       date,
		Status:     records.AttendanceStatus(req.Status),
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MarkAttendanceResponse{
		Message:    "Attendance recorded successfully",
		Attendance: rec,
	})
}

// ListAttendanceRecords returns the employee's raw attendance records.
// GET /api/attendance/{id}/records
func (h *Handler) ListAttendanceRecords(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := employeeParam(w, r)
	if !ok {
		return
	}

	recs, err := h.Attendance.Records(r.Context(), employeeID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

// ListEmployeeLeaves returns one employee's leave requests.
// GET /api/leaves/{id}?status=pending
func (h *Handler) ListEmployeeLeaves(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := employeeParam(w, r)
	if !ok {
		return
	}

	leaves, err := h.Leaves.List(r.Context(), leave.Filter{
		EmployeeID: employeeID,
		Status:     records.LeaveStatus(r.URL.Query().Get("status")),
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leaves)
}

// SubmitLeave creates a pending leave request behind the eligibility gate.
// POST /api/leaves/{id} {"startDate": "...", "endDate": "...", "reason": "..."}
func (h *Handler) SubmitLeave(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := employeeParam(w, r)
	if !ok {
		return
	}
	// Unknown employee is reported before malformed or missing dates.
	if err := h.requireEmployee(r, employeeID); err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	var req SubmitLeaveRequest
	if !h.decode(w, r, &req) {
		return
	}

	start, err := records.ParseDate(req.StartDate)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	end, err := records.ParseDate(req.EndDate)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	created, err := h.Leaves.Submit(r.Context(), leave.SubmitInput{
		EmployeeID: employeeID,
		StartDate:  start,
		EndDate:    end,
		Reason:     strings.TrimSpace(req.Reason),
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, LeaveResponse{
		Message: "Leave request submitted successfully",
		Leave:   created,
	})
}

// GetLeaveDays returns the approved leave-day total, optionally within
// [start, end].
// GET /api/employees/{id}/leave-days?start=2024-01-01&end=2024-12-31
func (h *Handler) GetLeaveDays(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := employeeParam(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	startParam, endParam := q.Get("start"), q.Get("end")

	var window *records.DateRange
	if startParam != "" || endParam != "" {
		rng, err := parseRange(startParam, endParam)
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		window = &rng
	}

	days, err := h.Leaves.DaysInRange(r.Context(), employeeID, window)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	dto := LeaveDaysDTO{EmployeeID: employeeID, Days: days}
	if window != nil {
		dto.StartDate = window.Start.String()
		dto.EndDate = window.End.String()
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) requireEmployee(r *http.Request, employeeID string) error {
	doc, err := h.Store.Snapshot(r.Context())
	if err != nil {
		return err
	}
	if doc.FindEmployee(employeeID) == nil {
		return fmt.Errorf("%w: employee %s", records.ErrNotFound, employeeID)
	}
	return nil
}

func parseRange(start, end string) (records.DateRange, error) {
	if start == "" || end == "" {
		return records.DateRange{}, fmt.Errorf("%w: both start and end are required", records.ErrInvalidInput)
	}
	s, err := records.ParseDate(start)
	if err != nil {
		return records.DateRange{}, err
	}
	e, err := records.ParseDate(end)
	if err != nil {
		return records.DateRange{}, err
	}
	return records.NewDateRange(s, e)
}

// =============================================================================
// HELPERS
// =============================================================================

// decode reads the JSON body into dst and validates it. On failure it writes
// a 400 response and returns false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", string(records.KindInvalidInput), err.Error())
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]FieldErrorDTO, len(verrs))
			for i, fe := range verrs {
				fields[i] = FieldErrorDTO{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()}
			}
			writeError(w, http.StatusBadRequest, "Validation failed", string(records.KindInvalidInput), fields)
			return false
		}
		writeError(w, http.StatusBadRequest, "Validation failed", string(records.KindInvalidInput), err.Error())
		return false
	}
	return true
}

// writeDomainError maps a service error to its status code and body.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	kind := records.KindOf(err)
	status := statusForKind(kind)

	resp := ErrorResponse{Error: err.Error(), Code: string(kind)}

	var ineligible *records.IneligibleError
	if errors.As(err, &ineligible) {
		p := ineligible.Percentage
		resp.CurrentPercentage = &p
	}

	if status >= http.StatusInternalServerError {
		h.Log.Error(r.Context(), "request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method, "path", r.URL.Path, "err", err)
		resp.Error = "Internal error"
		if kind == records.KindStorage {
			resp.Error = "Storage failure, the change was not saved"
		}
		resp.Details = err.Error()
	}

	writeJSON(w, status, resp)
}

func statusForKind(kind records.Kind) int {
	switch kind {
	case records.KindInvalidInput:
		return http.StatusBadRequest
	case records.KindUnauthorized:
		return http.StatusUnauthorized
	case records.KindForbidden:
		return http.StatusForbidden
	case records.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message, code string, details any) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code, Details: details})
}
