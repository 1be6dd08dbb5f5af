/*
Package identity is the authentication boundary.

PURPOSE:
  Registers and authenticates employees and admins, issues tokens, and
  resolves tokens back to an Identity. The attendance and leave services
  never look inside a token; they only receive the resolved id.

COMPONENTS:
  PasswordHasher: bcrypt (password.go)
  TokenIssuer:    HS256 JWT with subject, email and role claims (token.go)
  Service:        Register / Login / BootstrapAdmin over the Record Store

DEFAULT ADMIN:
  BootstrapAdmin guarantees that an admin with DefaultAdminEmail exists.
  The default credentials are well known. They exist so a fresh install can
  be administered and must be rotated by the operator. The password is only
  reported back on the call that created the account.

LOGIN ERRORS:
  Unknown email and wrong password produce the same ErrUnauthorized message.

SEE ALSO:
  - api/middleware.go: Bearer token resolution
*/
package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/warp/attendance-engine/logging"
	"github.com/warp/attendance-engine/records"
)

const (
	DefaultAdminEmail    = "admin@attendance.com"
	DefaultAdminPassword = "Admin@123"
	DefaultAdminName     = "System Admin"
)

const invalidCredentials = "invalid email or password"

// =============================================================================
// INPUTS / OUTPUTS
// =============================================================================

// EmployeeRegistration is the input of RegisterEmployee.
type EmployeeRegistration struct {
	Name         string
	Email        string
	Password     string
	EmployeeCode string
	Department   string
}

// AdminRegistration is the input of RegisterAdmin.
type AdminRegistration struct {
	Name     string
	Email    string
	Password string
}

// EmployeeSession is the result of a successful employee login.
type EmployeeSession struct {
	Token    string
	Employee records.Employee
}

// AdminSession is the result of a successful admin login.
type AdminSession struct {
	Token string
	Admin records.Admin
}

// BootstrapResult reports what BootstrapAdmin did. Password is set only
// when the default admin was created by this call.
type BootstrapResult struct {
	Created  bool
	Email    string
	Password string
}

// =============================================================================
// SERVICE
// =============================================================================

// Service authenticates employees and admins.
type Service struct {
	Store  *records.Store
	Hasher PasswordHasher
	Tokens *TokenIssuer
	Log    logging.Logger

	Now   func() time.Time
	NewID func() string
}

// NewService wires a Service with the real clock and uuid ids.
func NewService(store *records.Store, hasher PasswordHasher, tokens *TokenIssuer, log logging.Logger) *Service {
	return &Service{
		Store:  store,
		Hasher: hasher,
		Tokens: tokens,
		Log:    log,
		Now:    time.Now,
		NewID:  uuid.NewString,
	}
}

// RegisterEmployee creates an employee. Email and employee code must be unique.
func (s *Service) RegisterEmployee(ctx context.Context, in EmployeeRegistration) (records.Employee, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.EmployeeCode = strings.TrimSpace(in.EmployeeCode)
	if in.Name == "" || in.Email == "" || in.Password == "" || in.EmployeeCode == "" {
		return records.Employee{}, fmt.Errorf("%w: name, email, password and employee code are required",
			records.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Department) == "" {
		in.Department = records.DefaultDepartment
	}

	// Hash before entering Update so the store lock is not held during bcrypt.
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return records.Employee{}, err
	}

	var created records.Employee
	err = s.Store.Update(ctx, func(doc *records.Document) error {
		if doc.FindEmployeeByEmail(in.Email) != nil {
			return fmt.Errorf("%w: email already registered", records.ErrInvalidInput)
		}
		if doc.FindEmployeeByCode(in.EmployeeCode) != nil {
			return fmt.Errorf("%w: employee code already exists", records.ErrInvalidInput)
		}

		now := s.Now().UTC()
		created = records.Employee{
			ID:           s.NewID(),
			Name:         in.Name,
			Email:        in.Email,
			EmployeeCode: in.EmployeeCode,
			Department:   in.Department,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		doc.Employees = append(doc.Employees, created)
		return nil
	})
	if err != nil {
		return records.Employee{}, err
	}

	s.Log.Info(ctx, "employee registered", "employee_id", created.ID, "employee_code", created.EmployeeCode)
	return created, nil
}

// LoginEmployee verifies credentials and issues an employee token.
func (s *Service) LoginEmployee(ctx context.Context, email, password string) (EmployeeSession, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return EmployeeSession{}, fmt.Errorf("%w: email and password are required", records.ErrInvalidInput)
	}

	doc, err := s.Store.Snapshot(ctx)
	if err != nil {
		return EmployeeSession{}, err
	}
	emp := doc.FindEmployeeByEmail(email)
	if emp == nil || !s.Hasher.Verify(password, emp.PasswordHash) {
		return EmployeeSession{}, fmt.Errorf("%w: %s", records.ErrUnauthorized, invalidCredentials)
	}

	token, err := s.Tokens.Issue(Identity{Subject: emp.ID, Email: emp.Email, Role: RoleEmployee})
	if err != nil {
		return EmployeeSession{}, err
	}
	return EmployeeSession{Token: token, Employee: *emp}, nil
}

// LoginAdmin verifies admin credentials and issues an admin token.
func (s *Service) LoginAdmin(ctx context.Context, email, password string) (AdminSession, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return AdminSession{}, fmt.Errorf("%w: email and password are required", records.ErrInvalidInput)
	}

	doc, err := s.Store.Snapshot(ctx)
	if err != nil {
		return AdminSession{}, err
	}
	admin := doc.FindAdminByEmail(email)
	if admin == nil || !s.Hasher.Verify(password, admin.PasswordHash) {
		return AdminSession{}, fmt.Errorf("%w: %s", records.ErrUnauthorized, invalidCredentials)
	}

	token, err := s.Tokens.Issue(Identity{Subject: admin.ID, Email: admin.Email, Role: RoleAdmin})
	if err != nil {
		return AdminSession{}, err
	}
	return AdminSession{Token: token, Admin: *admin}, nil
}

// RegisterAdmin creates an admin. Email must be unique among admins.
func (s *Service) RegisterAdmin(ctx context.Context, in AdminRegistration) (records.Admin, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return records.Admin{}, fmt.Errorf("%w: email, password and name are required", records.ErrInvalidInput)
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return records.Admin{}, err
	}

	var created records.Admin
	err = s.Store.Update(ctx, func(doc *records.Document) error {
		if doc.FindAdminByEmail(in.Email) != nil {
			return fmt.Errorf("%w: email already registered", records.ErrInvalidInput)
		}
		created = s.newAdmin(in.Name, in.Email, hash)
		doc.Admins = append(doc.Admins, created)
		return nil
	})
	if err != nil {
		return records.Admin{}, err
	}

	s.Log.Info(ctx, "admin registered", "admin_id", created.ID)
	return created, nil
}

// BootstrapAdmin creates the default admin unless one with the default email
// already exists. Safe to call on every start.
func (s *Service) BootstrapAdmin(ctx context.Context) (BootstrapResult, error) {
	result := BootstrapResult{Email: DefaultAdminEmail}

	doc, err := s.Store.Snapshot(ctx)
	if err != nil {
		return result, err
	}
	if doc.FindAdminByEmail(DefaultAdminEmail) != nil {
		return result, nil
	}

	hash, err := s.Hasher.Hash(DefaultAdminPassword)
	if err != nil {
		return result, err
	}

	err = s.Store.Update(ctx, func(doc *records.Document) error {
		// Re-check under the lock: a concurrent call may have won.
		if doc.FindAdminByEmail(DefaultAdminEmail) != nil {
			return nil
		}
		doc.Admins = append(doc.Admins, s.newAdmin(DefaultAdminName, DefaultAdminEmail, hash))
		result.Created = true
		return nil
	})
	if err != nil {
		return BootstrapResult{Email: DefaultAdminEmail}, err
	}

	if result.Created {
		result.Password = DefaultAdminPassword
		s.Log.Warn(ctx, "default admin created, rotate its password", "email", DefaultAdminEmail)
	}
	return result, nil
}

// Authenticate resolves a bearer token.
func (s *Service) Authenticate(token string) (Identity, error) {
	return s.Tokens.Verify(token)
}

func (s *Service) newAdmin(name, email, hash string) records.Admin {
	now := s.Now().UTC()
	return records.Admin{
		ID:           s.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
