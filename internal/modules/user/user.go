package user

import (
	"time"

	"github.com/google/uuid"
)

// Role is the dashboard role a user operates under.
type Role string

const (
	RoleAdmin              Role = "ADMIN"
	RoleBlastingEngineer   Role = "BLASTING_ENGINEER"
	RoleExplosiveManager   Role = "EXPLOSIVE_MANAGER"
	RoleStoreManager       Role = "STORE_MANAGER"
	RoleMachineManager     Role = "MACHINE_MANAGER"
	RoleMechanicalEngineer Role = "MECHANICAL_ENGINEER"
	RoleOperator           Role = "OPERATOR"
)

// User represents a user in the system.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	Role         Role      `json:"role"`
	RegionID     string    `json:"region_id,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
