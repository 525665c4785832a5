package models

import "time"

// Offering is a bookable class type, e.g. "Beginner Swim, Saturdays"
type Offering struct {
	ID                int64     `json:"id" db:"id" example:"1"`
	Title             string    `json:"title" db:"title" example:"Beginner Swim"`
	Notes             *string   `json:"notes,omitempty" db:"notes"`
	Level             *string   `json:"level,omitempty" db:"level" example:"Level 1"`
	DefaultClassRatio string    `json:"defaultClassRatio" db:"default_class_ratio" example:"3:1"`
	BaseCapacity      float64   `json:"baseCapacity" db:"base_capacity" example:"6"`
	PriceCents        int64     `json:"priceCents" db:"price_cents" example:"12000"`
	IsActive          bool      `json:"isActive" db:"is_active"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`
}
