package models

import (
	"time"
)

// User is a staff or admin account allowed to sign in to the admin system
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`
	Email       string     `json:"email" db:"email" example:"desk@swimschool.test"`
	Password    string     `json:"-" db:"password"`
	FirstName   string     `json:"firstName" db:"first_name" example:"Jane"`
	LastName    string     `json:"lastName" db:"last_name" example:"Doe"`
	RoleType    RoleType   `json:"roleType" db:"role_type" example:"STAFF"`
	IsActive    bool       `json:"isActive" db:"is_active" example:"true"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}
