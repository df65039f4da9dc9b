package domain

import "time"

// Kind distinguishes the two account collections. Customers and staff share the
// same shape and rules but never share storage.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindStaff    Kind = "staff"
)

// Label is the capitalised form used in response messages ("Customer created").
func (k Kind) Label() string {
	switch k {
	case KindCustomer:
		return "Customer"
	case KindStaff:
		return "Staff"
	default:
		return string(k)
	}
}

// Account is a customer or staff member. PasswordHash never leaves the service
// boundary in a response.
type Account struct {
	ID           string    `json:"_id"`
	Firstname    string    `json:"firstname"`
	Lastname     string    `json:"lastname"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
	UpdatedAt    time.Time `json:"updatedAt,omitzero"`
}

// ProfileUpdate holds the only fields the update path may change.
type ProfileUpdate struct {
	Firstname string
	Lastname  string
	Email     string
}
