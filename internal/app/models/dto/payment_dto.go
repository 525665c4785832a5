package dto

import (
	"time"

	"github.com/yigit/swimdesk/internal/app/models"
)

// PaymentRequest records money received against an enrollment
type PaymentRequest struct {
	EnrollmentID int64                `json:"enrollmentId" binding:"required,min=1" example:"40"`
	AmountCents  int64                `json:"amountCents" binding:"required,gt=0" example:"5000"`
	Method       models.PaymentMethod `json:"method" binding:"required,oneof=CASH CARD TRANSFER" example:"CARD"`
	PaidAt       *time.Time           `json:"paidAt"`
	Reference    *string              `json:"reference" binding:"omitempty,max=100"`
}

// PaymentFilter holds list query parameters
type PaymentFilter struct {
	EnrollmentID *int64
	SwimmerID    *int64
}
