package models

// RoleType defines the staff role type
type RoleType string

const (
	RoleAdmin      RoleType = "ADMIN"
	RoleStaff      RoleType = "STAFF"
	RoleInstructor RoleType = "INSTRUCTOR"
)

// IsValid reports whether the role is one of the known staff roles
func (r RoleType) IsValid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleInstructor:
		return true
	}
	return false
}

// EnrollmentStatus is the lifecycle state of an enrollment
type EnrollmentStatus string

const (
	EnrollmentActive      EnrollmentStatus = "ACTIVE"
	EnrollmentCanceled    EnrollmentStatus = "CANCELED"
	EnrollmentTransferred EnrollmentStatus = "TRANSFERRED"
)

// PaymentMethod is how a payment was collected
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentCard     PaymentMethod = "CARD"
	PaymentTransfer PaymentMethod = "TRANSFER"
)

// IsValid reports whether the method is one of the accepted payment methods
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

// IsValid reports whether the status is a known enrollment state
func (s EnrollmentStatus) IsValid() bool {
	switch s {
	case EnrollmentActive, EnrollmentCanceled, EnrollmentTransferred:
		return true
	}
	return false
}
