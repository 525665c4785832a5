package models

import "time"

// Session is one scheduled occurrence of an offering
type Session struct {
	ID               int64     `json:"id" db:"id" example:"12"`
	OfferingID       int64     `json:"offeringId" db:"offering_id" example:"1"`
	StartsAt         time.Time `json:"startsAt" db:"starts_at"`
	DurationMinutes  int       `json:"durationMinutes" db:"duration_minutes" example:"30"`
	Location         *string   `json:"location,omitempty" db:"location" example:"Lane 3"`
	CapacityOverride *float64  `json:"capacityOverride,omitempty" db:"capacity_override"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`

	// Relations (populated when needed)
	Offering    *Offering     `json:"offering,omitempty"`
	Instructors []*Instructor `json:"instructors,omitempty"`
}

// BaseCapacity returns the override when set, otherwise the offering capacity
func (s *Session) BaseCapacity() float64 {
	if s.CapacityOverride != nil {
		return *s.CapacityOverride
	}
	if s.Offering != nil {
		return s.Offering.BaseCapacity
	}
	return 0
}

// EndsAt returns the session end time
func (s *Session) EndsAt() time.Time {
	return s.StartsAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
}
