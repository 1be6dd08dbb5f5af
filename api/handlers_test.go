/*
handlers_test.go - HTTP tests for the API handlers

Tests for:
- The register, submit and approve flow end to end through the router
- Authentication and access control (401 / 403)
- Domain error mapping (eligibility gate, not found, validation, storage)
- Admin bootstrap idempotency
- Approved leave-day totals
*/
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/identity"
	"github.com/warp/attendance-engine/leave"
	"github.com/warp/attendance-engine/logging"
	"github.com/warp/attendance-engine/records"
	"golang.org/x/crypto/bcrypt"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	handler *Handler
	router  http.Handler
	backend *records.MemoryBackend
	store   *records.Store
	clock   *testClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	backend := records.NewMemoryBackend()
	store := records.NewStore(backend)
	clock := &testClock{now: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)}

	tokens, err := identity.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	log := logging.Discard()
	ids := identity.NewService(store, &identity.BcryptHasher{Cost: bcrypt.MinCost}, tokens, log)
	att := attendance.NewService(store, log)
	leaves := leave.NewService(store, log)
	leaves.Now = clock.Now

	h := NewHandler(store, att, leaves, ids, log)
	return &testEnv{
		handler: h,
		router:  NewRouter(h, RouterOptions{DisableRequestLog: true}),
		backend: backend,
		store:   store,
		clock:   clock,
	}
}

// do sends a request through the router. body may be nil.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

// registerEmployee registers and logs in an employee, returning id and token.
func (e *testEnv) registerEmployee(t *testing.T, name, email, code string) (string, string) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/register", "", RegisterEmployeeRequest{
		Name: name, Email: email, Password: "secret1", EmployeeCode: code,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: email, Password: "secret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp LoginResponse
	decodeBody(t, rec, &resp)
	require.NotNil(t, resp.Employee)
	return resp.Employee.ID, resp.Token
}

// adminToken bootstraps the default admin and logs in.
func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodGet, "/api/admin/bootstrap", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/admin/login", "", LoginRequest{
		Email: identity.DefaultAdminEmail, Password: identity.DefaultAdminPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp LoginResponse
	decodeBody(t, rec, &resp)
	require.NotNil(t, resp.Admin)
	return resp.Token
}

func (e *testEnv) mark(t *testing.T, token, employeeID, date string, status records.AttendanceStatus) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/attendance/"+employeeID, token, MarkAttendanceRequest{
		Date: date, Status: string(status),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func (e *testEnv) submit(t *testing.T, token, employeeID, start, end string) records.LeaveRequest {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/leaves/"+employeeID, token, SubmitLeaveRequest{
		StartDate: start, EndDate: end, Reason: "Family trip",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp LeaveResponse
	decodeBody(t, rec, &resp)
	return resp.Leave
}

func (e *testEnv) decide(t *testing.T, token, leaveID string, status records.LeaveStatus) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, http.MethodPatch, "/api/admin/leaves", token, DecideLeaveRequest{
		LeaveID: leaveID, Status: string(status),
	})
}

// =============================================================================
// END TO END
// =============================================================================

func TestLeaveFlow_RegisterSubmitApprove(t *testing.T) {
	// GIVEN: A freshly registered employee with no attendance
	env := newTestEnv(t)
	empID, empToken := env.registerEmployee(t, "Ada Lovelace", "ada@example.com", "EMP-001")
	adminToken := env.adminToken(t)

	// THEN: Percentage defaults to 100 and leave is allowed
	rec := env.do(t, http.MethodGet, "/api/attendance/"+empID, empToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats attendance.Stats
	decodeBody(t, rec, &stats)
	assert.Equal(t, 100, stats.Percentage)
	assert.True(t, stats.CanRequestLeave)

	// WHEN: Submitting a leave request
	submitted := env.submit(t, empToken, empID, "2024-03-01", "2024-03-03")
	assert.Equal(t, records.LeavePending, submitted.Status)
	assert.Equal(t, submitted.CreatedAt, submitted.UpdatedAt)

	// THEN: The admin's unfiltered list holds it as pending
	rec = env.do(t, http.MethodGet, "/api/admin/leaves", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []leave.Enriched
	decodeBody(t, rec, &all)
	require.Len(t, all, 1)
	assert.Equal(t, submitted.ID, all[0].ID)
	assert.Equal(t, records.LeavePending, all[0].Status)

	// AND: The pending filter returns it enriched with employee details
	rec = env.do(t, http.MethodGet, "/api/admin/leaves?status=pending", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pending []leave.Enriched
	decodeBody(t, rec, &pending)
	require.Len(t, pending, 1)
	assert.Equal(t, submitted.ID, pending[0].ID)
	assert.Equal(t, "Ada Lovelace", pending[0].EmployeeName)
	assert.Equal(t, "ada@example.com", pending[0].EmployeeEmail)
	assert.Equal(t, "EMP-001", pending[0].EmployeeCode)

	// WHEN: Admin approves it later
	env.clock.Advance(time.Hour)
	rec = env.decide(t, adminToken, submitted.ID, records.LeaveApproved)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var decided DecidedLeaveResponse
	decodeBody(t, rec, &decided)
	assert.Equal(t, "Leave approved successfully", decided.Message)
	assert.Equal(t, records.LeaveApproved, decided.Leave.Status)
	assert.True(t, decided.Leave.UpdatedAt.After(submitted.UpdatedAt))
	assert.Equal(t, "Ada Lovelace", decided.Leave.EmployeeName)

	// THEN: It no longer appears under pending
	rec = env.do(t, http.MethodGet, "/api/admin/leaves?status=pending", adminToken, nil)
	decodeBody(t, rec, &pending)
	assert.Empty(t, pending)

	// AND: The employee's pending list is empty
	rec = env.do(t, http.MethodGet, "/api/leaves/"+empID+"?status=pending", empToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ownPending []leave.Enriched
	decodeBody(t, rec, &ownPending)
	assert.Empty(t, ownPending)

	// AND: The employee sees it approved
	rec = env.do(t, http.MethodGet, "/api/leaves/"+empID, empToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var own []leave.Enriched
	decodeBody(t, rec, &own)
	require.Len(t, own, 1)
	assert.Equal(t, records.LeaveApproved, own[0].Status)
}

func TestListLeaves_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	empID, empToken := env.registerEmployee(t, "Ada", "ada@example.com", "EMP-001")
	adminToken := env.adminToken(t)

	first := env.submit(t, empToken, empID, "2024-03-01", "2024-03-01")
	env.clock.Advance(time.Minute)
	second := env.submit(t, empToken, empID, "2024-04-01", "2024-04-01")

	rec := env.do(t, http.MethodGet, "/api/admin/leaves", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []leave.Enriched
	decodeBody(t, rec, &all)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)

	rec = env.do(t, http.MethodGet, "/api/admin/leaves?status=cancelled", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func TestMarkAttendance_UpsertsByDate(t *testing.T) {
	env := newTestEnv(t)
	empID, token := env.registerEmployee(t, "Ada", "ada@example.com", "EMP-001")

	env.mark(t, token, empID, "2024-01-10", records.AttendanceAbsent)
	env.mark(t, token, empID, "2024-01-10", records.AttendancePresent)
	env.mark(t, token, empID, "2024-01-11", records.AttendanceHalfDay)

	rec := env.do(t, http.MethodGet, "/api/attendance/"+empID+"/records", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var recs []records.AttendanceRecord
	decodeBody(t, rec, &recs)
	require.Len(t, recs, 2)

	rec = env.do(t, http.MethodGet, "/api/attendance/"+empID, token, nil)
	var stats attendance.Stats
	decodeBody(t, rec, &stats)
	assert.Equal(t, 2, stats.TotalDays)
	assert.Equal(t, 1, stats.PresentDays)
	assert.Equal(t, 1, stats.HalfDays)
	assert.Equal(t, 75, stats.Percentage)
	assert.True(t, stats.CanRequestLeave)
}

func TestListEmployees_IncludesStatistics(t *testing.T) {
	env := newTestEnv(t)
	empID, token := env.registerEmployee(t, "Ada", "ada@example.com", "EMP-001")
	adminToken := env.adminToken(t)

	env.mark(t, token, empID, "2024-01-10", records.AttendancePresent)
	env.mark(t, token, empID, "2024-01-11", records.AttendanceAbsent)

	rec := env.do(t, http.MethodGet, "/api/admin/employees", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []map[string]any
	decodeBody(t, rec, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, empID, rows[0]["id"])
	assert.EqualValues(t, 50, rows[0]["attendancePercentage"])
	assert.Equal(t, false, rows[0]["canRequestLeave"])
	assert.NotContains(t, rows[0], "passwordHash")
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func TestSubmitLeave_BelowThreshold(t *testing.T) {
	// GIVEN: An employee at 50% attendance
	env := newTestEnv(t)
	empID, token := env.registerEmployee(t, "Bo", "bo@example.com", "EMP-002")
	env.mark(t, token, empID, "2024-01-01", records.AttendancePresent)
	env.mark(t, token, empID, "2024-01-02", records.AttendanceAbsent)
	writes := env.backend.Writes()

	// WHEN: Submitting a leave request
	rec := env.do(t, http.MethodPost, "/api/leaves/"+empID, token, SubmitLeaveRequest{
		StartDate: "2024-03-01", EndDate: "2024-03-02",
	})

	// THEN: 403 with the current percentage and nothing written
	require.Equal(t, http.StatusForbidden, rec.Code)
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, string(records.KindForbidden), resp.Code)
	require.NotNil(t, resp.CurrentPercentage)
	assert.Equal(t, 50, *resp.CurrentPercentage)
	assert.Equal(t, writes, env.backend.Writes())
}

func TestSubmitLeave_InvalidRange(t *testing.T) {
	env := newTestEnv(t)
	empID, token := env.registerEmployee(t, "Ada", "ada@example.com", "EMP-001")

	tests := []struct {
		name  string
		start string
		end   string
	}{
		{"end before start", "2024-03-05", "2024-03-01"},
		{"malformed start", "03/01/2024", "2024-03-05"},
		{"missing end", "2024-03-01", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/leaves/"+empID, token, SubmitLeaveRequest{
				StartDate: tt.start, EndDate: tt.end,
			})
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestSubmitLeave_UnknownEmployeeBeforeDateErrors(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.adminToken(t)

	tests := []struct {
		name string
		body SubmitLeaveRequest
	}{
		{"valid dates", SubmitLeaveRequest{StartDate: "2024-03-01", EndDate: "2024-03-02"}},
		{"malformed date", SubmitLeaveRequest{StartDate: "not-a-date", EndDate: "2024-03-02"}},
		{"missing dates", SubmitLeaveRequest{}},
		{"end before start", SubmitLeaveRequest{StartDate: "2024-03-05", EndDate: "2024-03-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/leaves/ghost", adminToken, tt.body)
			require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
			var resp ErrorResponse
			decodeBody(t, rec, &resp)
			assert.Equal(t, string(records.KindNotFound), resp.Code)
		})
	}
}

func TestEmployeeRoutes_AccessControl(t *testing.T) {
	env := newTestEnv(t)
	adaID, adaToken := env.registerEmployee(t, "Ada", "ada@example.com", "EMP-001")
	boID, _ := env.registerEmployee(t, "Bo", "bo@example.com", "EMP-002")
	adminToken := env.adminToken(t)

	paths := []string{
		"/api/attendance/" + boID,
		"/api/attendance/" + boID + "/records",
		"/api/leaves/" + boID,
		"/api/employees/" + boID + "/leave-days",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, path, adaToken, nil)
			require.Equal(t, http.StatusForbidden, rec.Code)
			var resp ErrorResponse
			decodeBody(t, rec, &resp)
			assert.Equal(t, "access_denied", resp.Code)

			rec = env.do(t, http.MethodGet, path, adminToken, nil)
			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		})
	}

	rec := env.do(t, http.MethodGet, "/api/attendance/"+adaID, adaToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthentication(t *testing.T) {
	env := newTestEnv(t)
	empID, empToken := env.registerEmployee(t, "Ada", "ada@example.com", "EMP-001")

	t.Run("missing token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/attendance/"+empID, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/attendance/"+empID, "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("employee on admin route", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/admin/leaves", empToken, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
		var resp ErrorResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "admin_required", resp.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{
			Email: "ada@example.com", Password: "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("employee credentials on admin login", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/admin/login", "", LoginRequest{
			Email: "ada@example.com", Password: "secret1",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestDecideLeave_Errors(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.adminToken(t)

	rec := env.decide(t, adminToken, "does-not-exist", records.LeaveApproved)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.decide(t, adminToken, "does-not-exist", records.LeavePending)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, string(records.KindInvalidInput), resp.Code)
}

func TestRegisterEmployee_Validation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", RegisterEmployeeRequest{
		Name: "Ada", Email: "not-an-email", Password: "123", EmployeeCode: "EMP-001",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Code    string          `json:"code"`
		Details []FieldErrorDTO `json:"details"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, string(records.KindInvalidInput), resp.Code)

	fields := map[string]string{}
	for _, d := range resp.Details {
		fields[d.Field] = d.Rule
	}
	assert.Equal(t, "email", fields["email"])
	assert.Equal(t, "min", fields["password"])

	// Duplicate email
	env.registerEmployee(t, "Ada", "ada@example.com", "EMP-001")
	rec = env.do(t, http.MethodPost, "/api/auth/register", "", RegisterEmployeeRequest{
		Name: "Ada Two", Email: "ADA@example.com", Password: "secret1", EmployeeCode: "EMP-009",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_OverlongPassword(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.adminToken(t)
	long := strings.Repeat("x", 80)

	tests := []struct {
		name  string
		path  string
		token string
		body  any
	}{
		{"employee", "/api/auth/register", "", RegisterEmployeeRequest{
			Name: "Ada", Email: "ada@example.com", Password: long, EmployeeCode: "EMP-001",
		}},
		{"admin", "/api/admin/register", adminToken, RegisterAdminRequest{
			Name: "Grace", Email: "grace@example.com", Password: long,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, tt.path, tt.token, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			var resp struct {
				Code    string          `json:"code"`
				Details []FieldErrorDTO `json:"details"`
			}
			decodeBody(t, rec, &resp)
			assert.Equal(t, string(records.KindInvalidInput), resp.Code)
			require.Len(t, resp.Details, 1)
			assert.Equal(t, FieldErrorDTO{Field: "password", Rule: "max", Param: "72"}, resp.Details[0])
		})
	}
}

func TestMarkAttendance_Validation(t *testing.T) {
	env := newTestEnv(t)
	empID, token := env.registerEmployee(t, "Ada", "ada@example.com", "EMP-001")

	rec := env.do(t, http.MethodPost, "/api/attendance/"+empID, token, MarkAttendanceRequest{
		Date: "2024-01-10", Status: "sick",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/attendance/"+empID, token, MarkAttendanceRequest{
		Date: "2024-13-40", Status: "present",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/attendance/"+empID, bytes.NewBufferString("{"))
	req.Header.Set("Authorization", "Bearer "+token)
	raw := httptest.NewRecorder()
	env.router.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestMarkAttendance_StorageFailure(t *testing.T) {
	env := newTestEnv(t)
	empID, token := env.registerEmployee(t, "Ada", "ada@example.com", "EMP-001")

	env.backend.FailWrites(true)
	rec := env.do(t, http.MethodPost, "/api/attendance/"+empID, token, MarkAttendanceRequest{
		Date: "2024-01-10", Status: "present",
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, string(records.KindStorage), resp.Code)

	// Memory stayed at the durable state
	env.backend.FailWrites(false)
	rec = env.do(t, http.MethodGet, "/api/attendance/"+empID+"/records", token, nil)
	var recs []records.AttendanceRecord
	decodeBody(t, rec, &recs)
	assert.Empty(t, recs)
}

// =============================================================================
// BOOTSTRAP / ADMINS
// =============================================================================

func TestBootstrapAdmin_Idempotent(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/admin/bootstrap", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var first BootstrapResponse
	decodeBody(t, rec, &first)
	assert.True(t, first.Created)
	require.NotNil(t, first.Credentials)
	assert.Equal(t, identity.DefaultAdminEmail, first.Credentials.Email)
	assert.Equal(t, identity.DefaultAdminPassword, first.Credentials.Password)

	rec = env.do(t, http.MethodGet, "/api/admin/bootstrap", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var second BootstrapResponse
	decodeBody(t, rec, &second)
	assert.False(t, second.Created)
	assert.Nil(t, second.Credentials)

	doc, err := env.store.Snapshot(t.Context())
	require.NoError(t, err)
	assert.Len(t, doc.Admins, 1)
}

func TestRegisterAdmin(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.adminToken(t)

	rec := env.do(t, http.MethodPost, "/api/admin/register", adminToken, RegisterAdminRequest{
		Name: "Grace", Email: "grace@example.com", Password: "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/admin/login", "", LoginRequest{
		Email: "grace@example.com", Password: "secret1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Without a token the admin group is closed
	rec = env.do(t, http.MethodPost, "/api/admin/register", "", RegisterAdminRequest{
		Name: "Mallory", Email: "mallory@example.com", Password: "secret1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =============================================================================
// LEAVE DAYS
// =============================================================================

func TestGetLeaveDays(t *testing.T) {
	// GIVEN: Approved leaves of 3 and 2 days and one rejected leave
	env := newTestEnv(t)
	empID, token := env.registerEmployee(t, "Ada", "ada@example.com", "EMP-001")
	adminToken := env.adminToken(t)

	feb := env.submit(t, token, empID, "2024-02-05", "2024-02-07")
	mar := env.submit(t, token, empID, "2024-03-01", "2024-03-02")
	apr := env.submit(t, token, empID, "2024-04-01", "2024-04-10")
	require.Equal(t, http.StatusOK, env.decide(t, adminToken, feb.ID, records.LeaveApproved).Code)
	require.Equal(t, http.StatusOK, env.decide(t, adminToken, mar.ID, records.LeaveApproved).Code)
	require.Equal(t, http.StatusOK, env.decide(t, adminToken, apr.ID, records.LeaveRejected).Code)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"all approved", "", 5},
		{"february", "?start=2024-02-01&end=2024-02-29", 3},
		{"partially covered", "?start=2024-02-06&end=2024-02-29", 0},
		{"whole year", "?start=2024-01-01&end=2024-12-31", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/employees/"+empID+"/leave-days"+tt.query, token, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var dto LeaveDaysDTO
			decodeBody(t, rec, &dto)
			assert.Equal(t, tt.want, dto.Days)
			assert.Equal(t, empID, dto.EmployeeID)
		})
	}

	rec := env.do(t, http.MethodGet, "/api/employees/"+empID+"/leave-days?start=2024-02-01", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
