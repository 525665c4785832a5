package dto

// CreateOfferingRequest represents the payload for a new offering
type CreateOfferingRequest struct {
	Title             string   `json:"title" binding:"required,min=2,max=120" example:"Beginner Swim"`
	Notes             *string  `json:"notes" binding:"omitempty,max=2000"`
	Level             *string  `json:"level" binding:"omitempty,max=50" example:"Level 1"`
	DefaultClassRatio string   `json:"defaultClassRatio" binding:"omitempty,classratio" example:"3:1"`
	BaseCapacity      *float64 `json:"baseCapacity" binding:"omitempty,gte=0" example:"6"`
	PriceCents        int64    `json:"priceCents" binding:"gte=0" example:"12000"`
	IsActive          *bool    `json:"isActive"`
}

// UpdateOfferingRequest represents the payload for updating an offering
type UpdateOfferingRequest CreateOfferingRequest
