package types

import "github.com/hervefr78/fga-crm/internal/models"

// AuthenticatedUser is the request-scoped identity set by the auth middleware.
type AuthenticatedUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsManager reports whether the user bypasses ownership scoping (admin and
// manager roles see every record; sales see only their own).
func (u AuthenticatedUser) IsManager() bool {
	return u.Role == models.RoleAdmin || u.Role == models.RoleManager
}

func (u AuthenticatedUser) IsAdmin() bool {
	return u.Role == models.RoleAdmin
}

type UserResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

func NewUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
}
