package records

import "encoding/json"

// =============================================================================
// LEGACY DOCUMENT KEYS
// =============================================================================

// Documents written by the earlier lowdb-based service store the bcrypt hash
// under "password" and the employee code under "employeeId". Both are read
// when the current key is absent; writes always use the current keys.

type legacyEmployee Employee

// UnmarshalJSON reads an Employee, accepting the legacy keys.
func (e *Employee) UnmarshalJSON(b []byte) error {
	var aux struct {
		legacyEmployee
		LegacyPassword string `json:"password"`
		LegacyCode     string `json:"employeeId"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*e = Employee(aux.legacyEmployee)
	if e.PasswordHash == "" {
		e.PasswordHash = aux.LegacyPassword
	}
	if e.EmployeeCode == "" {
		e.EmployeeCode = aux.LegacyCode
	}
	return nil
}

type legacyAdmin Admin

// UnmarshalJSON reads an Admin, accepting the legacy "password" key.
func (a *Admin) UnmarshalJSON(b []byte) error {
	var aux struct {
		legacyAdmin
		LegacyPassword string `json:"password"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*a = Admin(aux.legacyAdmin)
	if a.PasswordHash == "" {
		a.PasswordHash = aux.LegacyPassword
	}
	return nil
}
