package dto

import (
	"time"

	"github.com/yigit/swimdesk/internal/domain"
)

// SessionRequest is used to create or update a scheduled session
type SessionRequest struct {
	OfferingID       int64     `json:"offeringId" binding:"required,min=1" example:"1"`
	StartsAt         time.Time `json:"startsAt" binding:"required" example:"2025-06-07T09:00:00Z"`
	DurationMinutes  int       `json:"durationMinutes" binding:"required,min=15,max=240" example:"30"`
	Location         *string   `json:"location" binding:"omitempty,max=100" example:"Lane 3"`
	CapacityOverride *float64  `json:"capacityOverride" binding:"omitempty,gte=0"`
	InstructorIDs    []int64   `json:"instructorIds" binding:"omitempty,dive,min=1"`
}

// AssignInstructorsRequest replaces the instructors of a session
type AssignInstructorsRequest struct {
	InstructorIDs []int64 `json:"instructorIds" binding:"dive,min=1"`
}

// SessionFilter holds list query parameters
type SessionFilter struct {
	From       *time.Time
	To         *time.Time
	OfferingID *int64
}

// SessionUsageResponse is the usage snapshot of a session
type SessionUsageResponse struct {
	SessionID int64                 `json:"sessionId" example:"12"`
	Usage     domain.CapacityResult `json:"usage"`
	Cached    bool                  `json:"cached"`
}
