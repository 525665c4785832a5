package models

import "time"

// Swimmer is a student taking lessons
type Swimmer struct {
	ID            int64      `json:"id" db:"id"`
	FirstName     string     `json:"firstName" db:"first_name"`
	LastName      string     `json:"lastName" db:"last_name"`
	BirthDate     *time.Time `json:"birthDate,omitempty" db:"birth_date"`
	GuardianName  *string    `json:"guardianName,omitempty" db:"guardian_name"`
	GuardianEmail *string    `json:"guardianEmail,omitempty" db:"guardian_email"`
	GuardianPhone *string    `json:"guardianPhone,omitempty" db:"guardian_phone"`
	Level         *string    `json:"level,omitempty" db:"level"`
	Notes         *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
}

// FullName returns "First Last"
func (s *Swimmer) FullName() string {
	return s.FirstName + " " + s.LastName
}
