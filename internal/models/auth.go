package models

type Role string

const (
	RoleCreator Role = "creator"
	RoleBrand   Role = "brand"
)

// Principal is the identity resolved from a verified bearer token.
type Principal struct {
	ID   int64
	Role Role
}
