package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/youwenshao/staffroom/core"
)

// Roles. A user's role is set at signup and never changes through the app;
// there is no promotion flow. Admin accounts are created with the admin CLI.
const (
	RoleStudentTeacher = "student-teacher"
	RoleProfessor      = "professor"
	RoleAdmin          = "admin"

	// RoleGuest only ever appears on ephemeral session identities,
	// never on a stored User.
	RoleGuest = "guest"
)

var (
	// SignupRoles are the roles self-service signup may assign.
	SignupRoles = []string{RoleStudentTeacher, RoleProfessor}

	Roles = []Role{
		{Name: "Student Teacher", Value: RoleStudentTeacher},
		{Name: "Professor", Value: RoleProfessor},
		{Name: "Admin", Value: RoleAdmin},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool          { return u.Role == RoleAdmin }
func (u *User) IsProfessor() bool      { return u.Role == RoleProfessor }
func (u *User) IsStudentTeacher() bool { return u.Role == RoleStudentTeacher }

// NewUser contains information needed to create a new User.
type NewUser struct {
	Username        string `json:"username" form:"username" validate:"required,min=3,alphanum"`
	Password        string `json:"password" form:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm" validate:"required,eqfield=Password"`
	Role            string `json:"role" form:"role" validate:"required,signuprole"`
}

func (nu *NewUser) Validate() error {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	return core.Validate.Struct(nu)
}
