package model

type Role string

const (
	RoleMedic         Role = "Medic"
	RoleTechnical     Role = "Technical"
	RoleAdministrator Role = "Administrator"
)

// DefaultRole is what an unauthenticated or role-less session resolves to.
const DefaultRole = RoleMedic

func (r Role) Valid() bool {
	switch r {
	case RoleMedic, RoleTechnical, RoleAdministrator:
		return true
	}
	return false
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}
