/*
Package records holds the data model and the process-wide Record Store.

PURPOSE:
  Every other package works against the four collections defined here:
  employees, attendance records, leave requests and admins. They live in a
  single Document that is loaded once, read through immutable snapshots and
  mutated only through Store.Update.

KEY TYPES:
  Document:         The persisted unit (four ordered collections)
  Employee:         Identity record, owned by the store
  AttendanceRecord: One status per (employee, calendar date)
  LeaveRequest:     pending -> approved | rejected
  Admin:            Administrator account

REFERENCES:
  AttendanceRecord.EmployeeID and LeaveRequest.EmployeeID are weak
  references. A lookup can legitimately miss (employee removed by hand from
  the backing file); display code falls back to UnknownDisplay.

SEE ALSO:
  - store.go: Load / Snapshot / Update / Flush
  - date.go: Calendar date type used by attendance and leaves
  - errors.go: Error kinds shared by all services
  - legacy.go: Reading documents written by the lowdb service
*/
package records

import "time"

// UnknownDisplay is rendered in place of fields of a missing employee.
const UnknownDisplay = "Unknown"

// DefaultDepartment is assigned when registration omits a department.
const DefaultDepartment = "General"

// =============================================================================
// ENTITIES
// =============================================================================

// Employee is a registered employee.
type Employee struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	EmployeeCode string    `json:"employeeCode"`
	Department   string    `json:"department"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AttendanceStatus is the outcome recorded for one calendar day.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceHalfDay AttendanceStatus = "half-day"
	AttendanceLeave   AttendanceStatus = "leave"
)

// Valid reports whether s is one of the known attendance statuses.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceHalfDay, AttendanceLeave:
		return true
	}
	return false
}

// AttendanceRecord is the status of one employee on one date.
// At most one record exists per (EmployeeID, Date).
type AttendanceRecord struct {
	ID         string           `json:"id"`
	EmployeeID string           `json:"employeeId"`
	Date       Date             `json:"date"`
	Status     AttendanceStatus `json:"status"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// LeaveStatus is the state of a leave request.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

// Valid reports whether s is a known leave status.
func (s LeaveStatus) Valid() bool {
	switch s {
	case LeavePending, LeaveApproved, LeaveRejected:
		return true
	}
	return false
}

// IsDecision reports whether s may be the target of an admin decision.
func (s LeaveStatus) IsDecision() bool {
	return s == LeaveApproved || s == LeaveRejected
}

// LeaveRequest covers the inclusive range [StartDate, EndDate].
type LeaveRequest struct {
	ID         string      `json:"id"`
	EmployeeID string      `json:"employeeId"`
	StartDate  Date        `json:"startDate"`
	EndDate    Date        `json:"endDate"`
	Reason     string      `json:"reason"`
	Status     LeaveStatus `json:"status"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// Days returns the inclusive number of calendar days covered by the request.
func (l LeaveRequest) Days() int {
	return l.StartDate.DaysUntil(l.EndDate) + 1
}

// Admin is an administrator account.
type Admin struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is the complete persisted state.
type Document struct {
	Employees  []Employee         `json:"employees"`
	Attendance []AttendanceRecord `json:"attendance"`
	Leaves     []LeaveRequest     `json:"leaves"`
	Admins     []Admin            `json:"admins"`
}

// NewDocument returns a document with empty, non-nil collections.
func NewDocument() *Document {
	d := &Document{}
	d.normalize()
	return d
}

// normalize replaces missing collections with empty lists.
func (d *Document) normalize() {
	if d.Employees == nil {
		d.Employees = []Employee{}
	}
	if d.Attendance == nil {
		d.Attendance = []AttendanceRecord{}
	}
	if d.Leaves == nil {
		d.Leaves = []LeaveRequest{}
	}
	if d.Admins == nil {
		d.Admins = []Admin{}
	}
}

// Clone returns a deep copy. All entity types are plain values, so copying
// the slices is enough.
func (d *Document) Clone() *Document {
	c := &Document{
		Employees:  append([]Employee(nil), d.Employees...),
		Attendance: append([]AttendanceRecord(nil), d.Attendance...),
		Leaves:     append([]LeaveRequest(nil), d.Leaves...),
		Admins:     append([]Admin(nil), d.Admins...),
	}
	c.normalize()
	return c
}

// =============================================================================
// LOOKUPS
// =============================================================================

// FindEmployee returns the employee with the given id, or nil.
func (d *Document) FindEmployee(id string) *Employee {
	for i := range d.Employees {
		if d.Employees[i].ID == id {
			return &d.Employees[i]
		}
	}
	return nil
}

// FindEmployeeByEmail returns the employee with the given email, or nil.
func (d *Document) FindEmployeeByEmail(email string) *Employee {
	for i := range d.Employees {
		if d.Employees[i].Email == email {
			return &d.Employees[i]
		}
	}
	return nil
}

// FindEmployeeByCode returns the employee with the given employee code, or nil.
func (d *Document) FindEmployeeByCode(code string) *Employee {
	for i := range d.Employees {
		if d.Employees[i].EmployeeCode == code {
			return &d.Employees[i]
		}
	}
	return nil
}

// FindAdminByEmail returns the admin with the given email, or nil.
func (d *Document) FindAdminByEmail(email string) *Admin {
	for i := range d.Admins {
		if d.Admins[i].Email == email {
			return &d.Admins[i]
		}
	}
	return nil
}

// FindAdmin returns the admin with the given id, or nil.
func (d *Document) FindAdmin(id string) *Admin {
	for i := range d.Admins {
		if d.Admins[i].ID == id {
			return &d.Admins[i]
		}
	}
	return nil
}

// FindLeave returns the leave request with the given id, or nil.
func (d *Document) FindLeave(id string) *LeaveRequest {
	for i := range d.Leaves {
		if d.Leaves[i].ID == id {
			return &d.Leaves[i]
		}
	}
	return nil
}

// FindAttendance returns the record for (employeeID, date), or nil.
func (d *Document) FindAttendance(employeeID string, date Date) *AttendanceRecord {
	for i := range d.Attendance {
		if d.Attendance[i].EmployeeID == employeeID && d.Attendance[i].Date.Equal(date) {
			return &d.Attendance[i]
		}
	}
	return nil
}

// AttendanceFor returns the employee's records in collection order.
func (d *Document) AttendanceFor(employeeID string) []AttendanceRecord {
	var out []AttendanceRecord
	for _, a := range d.Attendance {
		if a.EmployeeID == employeeID {
			out = append(out, a)
		}
	}
	return out
}
