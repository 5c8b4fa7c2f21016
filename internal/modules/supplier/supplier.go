package supplier

import (
	"time"

	"github.com/google/uuid"
)

// Supplier is a licensed explosives manufacturer the warehouse buys from.
type Supplier struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	LicenceNumber string    `json:"licence_number"`
	ContactName   string    `json:"contact_name,omitempty"`
	ContactPhone  string    `json:"contact_phone,omitempty"`
	ContactEmail  string    `json:"contact_email,omitempty"`
	Country       string    `json:"country"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
