package models

import "time"

// LineItem is an opaque cart or order entry. Its shape belongs to the client.
type LineItem map[string]any

type Order struct {
	ID          string     `json:"id"`
	Firstname   string     `json:"firstname" validate:"required,max=256"`
	Lastname    string     `json:"lastname" validate:"required,max=256"`
	Email       string     `json:"email" validate:"required,max=254"`
	PhoneNumber string     `json:"phoneNumber" validate:"required,max=256"`
	Address     string     `json:"address" validate:"required,max=512"`
	Orders      []LineItem `json:"orders" validate:"required"`
	TotalAmount *Amount    `json:"totalAmount" validate:"required"`
	CreatedAt   time.Time  `json:"createdAt"`
}
