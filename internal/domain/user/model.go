package user

import (
	"time"

	"github.com/walaka/walaka/internal/types"
)

// User is a row of the users profile table
type User struct {
	ID            string `db:"id" json:"id"`
	Email         string `db:"email" json:"email"`
	Role          string `db:"role" json:"role"`
	EnvironmentID string `db:"environment_id" json:"environment_id"`
	// CreatedBy is set for users invited by another account. The inviter owns the trial.
	CreatedBy string    `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// GetRole returns the normalized role of the user
func (u *User) GetRole() types.UserRole {
	return types.NormalizeUserRole(u.Role)
}

// HasParent reports whether the user was created by another account
func (u *User) HasParent() bool {
	return u.CreatedBy != "" && u.CreatedBy != u.ID
}
