package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/sariva/clinic/internal/platform/auth"
)

const minPasswordLength = 6

var validRoles = map[string]bool{
	auth.RoleAdmin: true, auth.RoleDoctor: true, auth.RoleStaff: true,
}

// User is a login account. The password hash never leaves the server.
type User struct {
	ID           uuid.UUID  `json:"_id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	DoctorID     *uuid.UUID `json:"doctorId"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Identity returns the token subject for u.
func (u *User) Identity() auth.Identity {
	id := auth.Identity{UserID: u.ID.String(), Name: u.Name, Email: u.Email, Role: u.Role}
	if u.DoctorID != nil {
		id.DoctorID = u.DoctorID.String()
	}
	return id
}
