package models

import "time"

// Account is a registered customer. Password holds the bcrypt hash and never
// leaves the process in JSON.
type Account struct {
	ID          string     `json:"id"`
	Firstname   string     `json:"firstname" validate:"required,max=256"`
	Lastname    string     `json:"lastname" validate:"required,max=256"`
	Email       string     `json:"email" validate:"required,max=254"`
	PhoneNumber string     `json:"phoneNumber" validate:"required,max=256"`
	Password    string     `json:"-" validate:"required,max=256"`
	Address     string     `json:"address" validate:"required,max=512"`
	Cart        []LineItem `json:"cart"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
