package user

import (
	"crypto/subtle"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/classpoll/core"
)

type Role string

// Roles
const (
	RoleAdmin       Role = "ADMIN"
	RoleResponsible Role = "RESPONSABLE" // teacher or class supervisor
	RoleStudent     Role = "ELEVE"
)

// seed administrator, synthesized when the user collection is empty at first load
const (
	SeedAdminID    = "admin-init"
	SeedAdminName  = "Administrateur Principal"
	SeedAdminEmail = "faye@eco.com"

	// DefaultSecret is the credential given to the seed administrator and set by credential resets.
	DefaultSecret = "passer25"
)

var (
	AllRoles = []Role{RoleAdmin, RoleResponsible, RoleStudent}

	Roles = []RoleInfo{
		{Name: "Student", Value: RoleStudent},
		{Name: "Responsible", Value: RoleResponsible},
		{Name: "Admin", Value: RoleAdmin},
	}
)

func (r Role) IsValid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

type RoleInfo struct {
	Name  string `json:"name"`
	Value Role   `json:"value"`
}

type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	Secret     string `json:"-"` // bcrypt hash, or plaintext for rows created before hashing
	ClassGroup string `json:"class_group,omitempty"`
}

func (u User) EntityID() string { return u.ID }

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Secret = string(hash)
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	if isHashed(u.Secret) {
		return bcrypt.CompareHashAndPassword([]byte(u.Secret), []byte(pwd))
	}
	if u.Secret == "" || subtle.ConstantTimeCompare([]byte(u.Secret), []byte(pwd)) == 0 {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return nil
}

func isHashed(secret string) bool {
	if _, err := bcrypt.Cost([]byte(secret)); err != nil {
		return false
	}
	return true
}

func (u *User) IsAdmin() bool       { return u.Role == RoleAdmin }
func (u *User) IsResponsible() bool { return u.Role == RoleResponsible }
func (u *User) IsStudent() bool     { return u.Role == RoleStudent }

// IsStaff tells whether the user sees every class group and may publish content.
func (u *User) IsStaff() bool { return u.IsAdmin() || u.IsResponsible() }

// IsProtected tells whether the user is the seed administrator, which can never be deleted.
// Rows predating the seed id are recognized by the seed email, which cannot change.
func (u *User) IsProtected() bool {
	return u.ID == SeedAdminID || strings.EqualFold(strings.TrimSpace(u.Email), SeedAdminEmail)
}

// HasEmail compares emails case-insensitively.
func (u *User) HasEmail(email string) bool {
	return strings.EqualFold(strings.TrimSpace(u.Email), strings.TrimSpace(email))
}

// SeedAdmin returns the default administrator.
func SeedAdmin() (User, error) {
	usr := User{
		ID:    SeedAdminID,
		Name:  SeedAdminName,
		Email: SeedAdminEmail,
		Role:  RoleAdmin,
	}
	if err := usr.SetPassword(DefaultSecret); err != nil {
		return User{}, err
	}
	return usr, nil
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name       string `json:"name" validate:"required,notblank"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6,pwdnospace"`
	Role       Role   `json:"role" validate:"required,role"`
	ClassGroup string `json:"class_group" validate:"required_unless=Role ADMIN"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.ClassGroup = core.CleanString(nu.ClassGroup)
	return validate.Struct(nu)
}

// UpdateUser defines what information may be provided to modify an existing User.
// An empty Password keeps the current credential.
type UpdateUser struct {
	Name       string `json:"name" validate:"required,notblank"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"omitempty,min=6,pwdnospace"`
	Role       Role   `json:"role" validate:"required,role"`
	ClassGroup string `json:"class_group" validate:"required_unless=Role ADMIN"`
}

func (uu *UpdateUser) Validate(validate *validator.Validate) error {
	uu.Name = core.CleanString(uu.Name)
	uu.Email = core.CleanString(uu.Email, true /* lower */)
	uu.ClassGroup = core.CleanString(uu.ClassGroup)
	return validate.Struct(uu)
}

// Apply returns a copy of usr carrying the updated fields.
func (uu UpdateUser) Apply(usr User) (User, error) {
	usr.Name = uu.Name
	usr.Email = uu.Email
	usr.Role = uu.Role
	usr.ClassGroup = uu.ClassGroup
	if usr.Role == RoleAdmin && uu.ClassGroup == "" {
		usr.ClassGroup = ""
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
	}
	return usr, nil
}
