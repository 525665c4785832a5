package models

import "time"

// Payment is money received against an enrollment
type Payment struct {
	ID           int64         `json:"id" db:"id"`
	EnrollmentID int64         `json:"enrollmentId" db:"enrollment_id"`
	AmountCents  int64         `json:"amountCents" db:"amount_cents"`
	Method       PaymentMethod `json:"method" db:"method"`
	Reference    *string       `json:"reference,omitempty" db:"reference"`
	PaidAt       time.Time     `json:"paidAt" db:"paid_at"`
	RefundedAt   *time.Time    `json:"refundedAt,omitempty" db:"refunded_at"`
	RecordedBy   *int64        `json:"recordedBy,omitempty" db:"recorded_by"`
	CreatedAt    time.Time     `json:"createdAt" db:"created_at"`
}

// IsRefunded reports whether the payment was refunded
func (p *Payment) IsRefunded() bool {
	return p.RefundedAt != nil
}
