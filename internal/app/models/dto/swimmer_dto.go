package dto

// SwimmerRequest is used to create or update a swimmer
type SwimmerRequest struct {
	FirstName     string  `json:"firstName" binding:"required,min=1,max=100" example:"Ada"`
	LastName      string  `json:"lastName" binding:"required,min=1,max=100" example:"Yilmaz"`
	BirthDate     *string `json:"birthDate" binding:"omitempty,datetime=2006-01-02" example:"2017-05-02"`
	GuardianName  *string `json:"guardianName" binding:"omitempty,max=200"`
	GuardianEmail *string `json:"guardianEmail" binding:"omitempty,email"`
	GuardianPhone *string `json:"guardianPhone" binding:"omitempty,max=40"`
	Level         *string `json:"level" binding:"omitempty,max=50"`
	Notes         *string `json:"notes" binding:"omitempty,max=2000"`
}
