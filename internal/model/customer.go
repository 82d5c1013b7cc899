package model

import "github.com/google/uuid"

// Customer is the identity an order is placed for.
type Customer struct {
	ID        uuid.UUID `json:"id" db:"id"`
	FirstName string    `json:"firstName" db:"first_name"`
	LastName  string    `json:"lastName" db:"last_name"`
	Email     string    `json:"email" db:"email"`
}

// FullName joins first and last name with a single space.
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}
