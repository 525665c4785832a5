package dto

import "github.com/yigit/swimdesk/internal/app/models"

// EnrollRequest places a swimmer into a session
type EnrollRequest struct {
	SessionID  int64   `json:"sessionId" binding:"required,min=1" example:"12"`
	SwimmerID  int64   `json:"swimmerId" binding:"required,min=1" example:"7"`
	ClassRatio *string `json:"classRatio" binding:"omitempty,classratio" example:"2:1"`
	Notes      *string `json:"notes" binding:"omitempty,max=500"`
}

// SkipRequest records a skipped occurrence
type SkipRequest struct {
	Date   string  `json:"date" binding:"required,datetime=2006-01-02" example:"2025-06-14"`
	Reason *string `json:"reason" binding:"omitempty,max=500"`
}

// TransferRequest moves an enrollment to another session
type TransferRequest struct {
	TargetSessionID int64   `json:"targetSessionId" binding:"required,min=1" example:"13"`
	Reason          *string `json:"reason" binding:"omitempty,max=500"`
}

// EnrollmentFilter holds list query parameters
type EnrollmentFilter struct {
	SessionID *int64
	SwimmerID *int64
	Status    *models.EnrollmentStatus
}

// TransferResponse reports both sides of a transfer
type TransferResponse struct {
	From *models.Enrollment `json:"from"`
	To   *models.Enrollment `json:"to"`
}

// BalanceResponse is what is still owed on an enrollment
type BalanceResponse struct {
	EnrollmentID int64 `json:"enrollmentId" example:"40"`
	PriceCents   int64 `json:"priceCents" example:"12000"`
	PaidCents    int64 `json:"paidCents" example:"5000"`
	BalanceCents int64 `json:"balanceCents" example:"7000"`
}
