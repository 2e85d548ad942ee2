package models

import "time"

// Account is a managed marketplace identity. Progress tracking references
// accounts by OrderID, not by the serial primary key.
type Account struct {
	ID        int       `json:"-"`
	OrderID   string    `json:"order_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Country   string    `json:"country"`
	UserID    string    `json:"user_id"`
	Suspended bool      `json:"suspended"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
