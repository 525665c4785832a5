package models

import "time"

// Instructor is a swim coach who can be assigned to sessions
type Instructor struct {
	ID             int64     `json:"id" db:"id" example:"1"`
	UserID         *int64    `json:"userId,omitempty" db:"user_id"` // Linked login, if any
	FirstName      string    `json:"firstName" db:"first_name" example:"Marta"`
	LastName       string    `json:"lastName" db:"last_name" example:"Kaya"`
	Email          string    `json:"email" db:"email" example:"marta@swimschool.test"`
	Certifications *string   `json:"certifications,omitempty" db:"certifications" example:"WSI, Lifeguard"`
	IsActive       bool      `json:"isActive" db:"is_active"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// FullName returns "First Last"
func (i *Instructor) FullName() string {
	return i.FirstName + " " + i.LastName
}
