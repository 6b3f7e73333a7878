package auth

// Role names the kind of account behind a session.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleUniversity Role = "university"
	RoleSPOC       Role = "spoc"
	RoleFaculty    Role = "faculty"
	RoleStudent    Role = "student"
)

var roles = []Role{RoleAdmin, RoleUniversity, RoleSPOC, RoleFaculty, RoleStudent}

// ParseRole returns the role named by s.
func ParseRole(s string) (Role, bool) {
	for _, r := range roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// Principal is the authenticated caller. Services receive it explicitly and
// derive every tenant filter from it.
type Principal struct {
	ID           string `json:"id"`
	Role         Role   `json:"role"`
	UniversityID string `json:"universityId,omitempty"`
	ProgramID    string `json:"programId,omitempty"`
	Name         string `json:"name"`
}

// HasRole reports whether the principal holds any of the given roles.
func (p Principal) HasRole(rs ...Role) bool {
	for _, r := range rs {
		if p.Role == r {
			return true
		}
	}
	return false
}

// SameUniversity reports whether a record owned by universityID is visible to p.
func (p Principal) SameUniversity(universityID string) bool {
	return p.UniversityID != "" && p.UniversityID == universityID
}

// ProgramScoped reports whether p only sees records of its own program.
// SPOCs administer a single program; other members read university-wide.
func (p Principal) ProgramScoped() bool {
	return p.Role == RoleSPOC && p.ProgramID != ""
}

// CanSee reports whether a record owned by the given university and program is
// visible to p. Admins see everything.
func (p Principal) CanSee(universityID, programID string) bool {
	if p.Role == RoleAdmin {
		return true
	}
	if !p.SameUniversity(universityID) {
		return false
	}
	return !p.ProgramScoped() || programID == "" || programID == p.ProgramID
}
