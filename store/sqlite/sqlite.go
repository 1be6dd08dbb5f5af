/*
Package sqlite provides a SQLite-backed records.Backend.

PURPOSE:
  Same contract as the JSON file backend, but the four collections live in
  tables. Useful when the deployment wants the transactional embedded store
  route instead of a flat file.

KEY TABLES:
  employees:  Employee records (unique email, unique employee_code)
  attendance: One row per (employee_id, date), enforced by a unique index
  leaves:     Leave requests
  admins:     Admin accounts (unique email)

  Every table has a position column so collection order survives a round
  trip. Rows are read back ORDER BY position.

WRITE SEMANTICS:
  Write replaces the whole document inside one SQL transaction
  (delete all rows, insert all rows, commit). A concurrent reader sees the
  previous or the new document, never a mix. Any failure rolls back.

WAL MODE:
  Opened with WAL so readers don't block on the single writer.

USAGE:
  backend, err := sqlite.New("./data/attendance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer backend.Close()
  store := records.NewStore(backend)

SEE ALSO:
  - records/store.go: Store that drives this backend
  - store/jsonfile: Flat file backend
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/attendance-engine/records"
)

// Store implements records.Backend using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Compile-time check that Store implements records.Backend
var _ records.Backend = (*Store)(nil)

// New opens (and migrates) the database at dbPath.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A second pooled connection to ":memory:" would be a different database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		employee_code TEXT NOT NULL,
		department TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_employees_email
		ON employees(email);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_employees_code
		ON employees(employee_code);

	-- Upsert-by-date: one status per employee per calendar day
	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_employee_date
		ON attendance(employee_id, date);

	CREATE TABLE IF NOT EXISTS leaves (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		employee_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		reason TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leaves_employee
		ON leaves(employee_id);
	CREATE INDEX IF NOT EXISTS idx_leaves_status
		ON leaves(status);

	CREATE TABLE IF NOT EXISTS admins (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_admins_email
		ON admins(email);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// READ
// =============================================================================

// Read loads all four collections. An empty database yields an empty document.
func (s *Store) Read(ctx context.Context) (*records.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin read: %w", err)
	}
	defer tx.Rollback()

	doc := records.NewDocument()
	if doc.Employees, err = readEmployees(ctx, tx); err != nil {
		return nil, err
	}
	if doc.Attendance, err = readAttendance(ctx, tx); err != nil {
		return nil, err
	}
	if doc.Leaves, err = readLeaves(ctx, tx); err != nil {
		return nil, err
	}
	if doc.Admins, err = readAdmins(ctx, tx); err != nil {
		return nil, err
	}
	return doc, nil
}

func readEmployees(ctx context.Context, tx *sql.Tx) ([]records.Employee, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, name, email, employee_code, department, password_hash, created_at, updated_at
		FROM employees ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	employees := []records.Employee{}
	for rows.Next() {
		var e records.Employee
		var createdAt, updatedAt string
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.EmployeeCode, &e.Department,
			&e.PasswordHash, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		e.UpdatedAt = parseTime(updatedAt)
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func readAttendance(ctx context.Context, tx *sql.Tx) ([]records.AttendanceRecord, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, employee_id, date, status, created_at
		FROM attendance ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	attendance := []records.AttendanceRecord{}
	for rows.Next() {
		var a records.AttendanceRecord
		var date, status, createdAt string
		if err := rows.Scan(&a.ID, &a.EmployeeID, &date, &status, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		if a.Date, err = records.ParseDate(date); err != nil {
			return nil, fmt.Errorf("attendance %s: %w", a.ID, err)
		}
		a.Status = records.AttendanceStatus(status)
		a.CreatedAt = parseTime(createdAt)
		attendance = append(attendance, a)
	}
	return attendance, rows.Err()
}

func readLeaves(ctx context.Context, tx *sql.Tx) ([]records.LeaveRequest, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, employee_id, start_date, end_date, reason, status, created_at, updated_at
		FROM leaves ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaves: %w", err)
	}
	defer rows.Close()

	leaves := []records.LeaveRequest{}
	for rows.Next() {
		var l records.LeaveRequest
		var startDate, endDate, status, createdAt, updatedAt string
		var reason sql.NullString
		if err := rows.Scan(&l.ID, &l.EmployeeID, &startDate, &endDate, &reason,
			&status, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan leave: %w", err)
		}
		if l.StartDate, err = records.ParseDate(startDate); err != nil {
			return nil, fmt.Errorf("leave %s: %w", l.ID, err)
		}
		if l.EndDate, err = records.ParseDate(endDate); err != nil {
			return nil, fmt.Errorf("leave %s: %w", l.ID, err)
		}
		l.Reason = reason.String
		l.Status = records.LeaveStatus(status)
		l.CreatedAt = parseTime(createdAt)
		l.UpdatedAt = parseTime(updatedAt)
		leaves = append(leaves, l)
	}
	return leaves, rows.Err()
}

func readAdmins(ctx context.Context, tx *sql.Tx) ([]records.Admin, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM admins ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query admins: %w", err)
	}
	defer rows.Close()

	admins := []records.Admin{}
	for rows.Next() {
		var a records.Admin
		var createdAt, updatedAt string
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		a.CreatedAt = parseTime(createdAt)
		a.UpdatedAt = parseTime(updatedAt)
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

// =============================================================================
// WRITE
// =============================================================================

// Write replaces the stored document in a single transaction.
func (s *Store) Write(ctx context.Context, doc *records.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, table := range []string{"employees", "attendance", "leaves", "admins"} {
		if _, err := sqlTx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for i, e := range doc.Employees {
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO employees (id, position, name, email, employee_code, department,
				password_hash, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, i, e.Name, e.Email, e.EmployeeCode, e.Department, e.PasswordHash,
			formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert employee %s: %w", e.ID, err)
		}
	}

	for i, a := range doc.Attendance {
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO attendance (id, position, employee_id, date, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			a.ID, i, a.EmployeeID, a.Date.String(), string(a.Status), formatTime(a.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert attendance %s: %w", a.ID, err)
		}
	}

	for i, l := range doc.Leaves {
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO leaves (id, position, employee_id, start_date, end_date, reason,
				status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			l.ID, i, l.EmployeeID, l.StartDate.String(), l.EndDate.String(), nullString(l.Reason),
			string(l.Status), formatTime(l.CreatedAt), formatTime(l.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert leave %s: %w", l.ID, err)
		}
	}

	for i, a := range doc.Admins {
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO admins (id, position, name, email, password_hash, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID, i, a.Name, a.Email, a.PasswordHash,
			formatTime(a.CreatedAt), formatTime(a.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert admin %s: %w", a.ID, err)
		}
	}

	return sqlTx.Commit()
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
