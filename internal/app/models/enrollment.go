package models

import "time"

// Enrollment places a swimmer in a session at a given class ratio
type Enrollment struct {
	ID                int64            `json:"id" db:"id"`
	SessionID         int64            `json:"sessionId" db:"session_id"`
	SwimmerID         int64            `json:"swimmerId" db:"swimmer_id"`
	ClassRatio        *string          `json:"classRatio,omitempty" db:"class_ratio"`
	Status            EnrollmentStatus `json:"status" db:"status"`
	Notes             *string          `json:"notes,omitempty" db:"notes"`
	TransferredFromID *int64           `json:"transferredFromId,omitempty" db:"transferred_from_id"`
	CreatedAt         time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time        `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Swimmer *Swimmer `json:"swimmer,omitempty"`
}

// IsActive reports whether the enrollment still holds a seat
func (e *Enrollment) IsActive() bool {
	return e.Status == EnrollmentActive
}

// EnrollmentSkip records a single missed occurrence of an enrollment
type EnrollmentSkip struct {
	ID           int64     `json:"id" db:"id"`
	EnrollmentID int64     `json:"enrollmentId" db:"enrollment_id"`
	SkipDate     time.Time `json:"skipDate" db:"skip_date"`
	Reason       *string   `json:"reason,omitempty" db:"reason"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// RosterEnrollment is an active enrollment as listed on a session roster
type RosterEnrollment struct {
	EnrollmentID     int64   `db:"id"`
	SessionID        int64   `db:"session_id"`
	SwimmerID        int64   `db:"swimmer_id"`
	SwimmerFirstName string  `db:"first_name"`
	SwimmerLastName  string  `db:"last_name"`
	ClassRatio       *string `db:"class_ratio"`
}
