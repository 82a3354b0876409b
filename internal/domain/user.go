package domain

import (
	"net/mail"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// validEmail accepts addresses that parse as RFC 5322 and look like a plain
// mailbox.
func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return false
	}
	return emailPattern.MatchString(strings.ToLower(email))
}

// UserRole represents the role of a user
type UserRole string

const (
	UserRoleAdmin       UserRole = "ADMIN"
	UserRoleCoordinator UserRole = "COORDINATOR"
	UserRoleDesigner    UserRole = "DESIGNER"
	UserRoleStaff       UserRole = "STAFF"
)

// User is a staff member that projects and products can be assigned to.
type User struct {
	Base
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

func (u *User) EntityType() EntityType { return EntityUser }

func (u *User) Label() string { return u.Name }

func (u *User) Snapshot() Snapshot {
	return Snapshot{
		"name":  u.Name,
		"email": u.Email,
		"role":  string(u.Role),
	}
}

// CreateUser is the payload for creating a user
type CreateUser struct {
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

func (c CreateUser) Validate() error {
	if blank(c.Name) {
		return NewValidationError("user name is required")
	}
	if !validEmail(c.Email) {
		return NewValidationError("user email is invalid")
	}
	return nil
}

func (c CreateUser) Build() *User {
	role := c.Role
	if role == "" {
		role = UserRoleStaff
	}
	return &User{
		Name:  c.Name,
		Email: strings.ToLower(strings.TrimSpace(c.Email)),
		Role:  role,
	}
}

// UserPatch is a sparse update of a user
type UserPatch struct {
	Name  Optional[string]   `json:"name"`
	Email Optional[string]   `json:"email"`
	Role  Optional[UserRole] `json:"role"`
}

func (p UserPatch) Validate() error {
	if p.Name.Set && blank(p.Name.Value) {
		return NewValidationError("user name cannot be cleared")
	}
	if p.Email.Set && !validEmail(p.Email.Value) {
		return NewValidationError("user email is invalid")
	}
	return nil
}

func (p UserPatch) Apply(u *User) {
	p.Name.ApplyTo(&u.Name)
	if p.Email.Set {
		u.Email = strings.ToLower(strings.TrimSpace(p.Email.Value))
	}
	p.Role.ApplyTo(&u.Role)
}
