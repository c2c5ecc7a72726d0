package user

// Identity is the per-request session identity: set at login (or
// continue-as-guest), cleared at logout. Guests have ID 0 and are barred
// from any persisting action.
type Identity struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	IsGuest  bool   `json:"is_guest"`
}

func Guest() Identity {
	return Identity{Username: "guest", Role: RoleGuest, IsGuest: true}
}

func (idn Identity) IsZero() bool {
	return idn == Identity{}
}

func (idn Identity) IsAdmin() bool          { return !idn.IsGuest && idn.Role == RoleAdmin }
func (idn Identity) IsProfessor() bool      { return !idn.IsGuest && idn.Role == RoleProfessor }
func (idn Identity) IsStudentTeacher() bool { return !idn.IsGuest && idn.Role == RoleStudentTeacher }

func (u User) Identity() Identity {
	return Identity{ID: u.ID, Username: u.Username, Role: u.Role}
}
