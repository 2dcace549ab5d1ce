package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity record consulted for transition authorization and
// login. Full user administration lives outside this service.
type User struct {
	ID           uuid.UUID
	Email        string
	FullName     string
	PasswordHash string
	Roles        []Role
	CreatedAt    time.Time
}

// HasRole reports whether the user holds the given role. Admin does not
// implicitly satisfy other roles; the workflow table lists ADMIN explicitly
// where it is permitted.
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
