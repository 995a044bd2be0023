package user

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ShippingAddress is stored on the user as a JSON column and copied
// onto orders at checkout.
type ShippingAddress struct {
	FullName      string `json:"full_name"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`
}

type User struct {
	ID            uint
	Name          string
	Email         string
	Password      string
	Role          Role
	Address       *ShippingAddress
	PaymentMethod *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
