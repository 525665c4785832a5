package dto

// InstructorRequest is used to create or update an instructor
type InstructorRequest struct {
	FirstName      string  `json:"firstName" binding:"required,min=1,max=100" example:"Marta"`
	LastName       string  `json:"lastName" binding:"required,min=1,max=100" example:"Kaya"`
	Email          string  `json:"email" binding:"required,email" example:"marta@swimschool.test"`
	Certifications *string `json:"certifications" binding:"omitempty,max=500"`
	UserID         *int64  `json:"userId" binding:"omitempty,min=1"`
	IsActive       *bool   `json:"isActive"`
}
