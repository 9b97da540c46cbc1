package models

import (
	"time"

	"github.com/google/uuid"
)

const EventOrderPlaced = "orders.created"

type OrderPlacedPayload struct {
	Email       string `json:"email"`
	Firstname   string `json:"firstname"`
	Lastname    string `json:"lastname"`
	Address     string `json:"address"`
	TotalAmount string `json:"total_amount"`
	Items       int    `json:"items"`
}

func NewOrderPlacedEvent(o *Order) Event[OrderPlacedPayload] {
	total := ""
	if o.TotalAmount != nil {
		total = o.TotalAmount.String()
	}
	return Event[OrderPlacedPayload]{
		ID:      uuid.NewString(),
		Type:    EventOrderPlaced,
		Version: 1,
		Time:    time.Now().UTC(),
		OrderID: o.ID,
		Payload: OrderPlacedPayload{
			Email:       o.Email,
			Firstname:   o.Firstname,
			Lastname:    o.Lastname,
			Address:     o.Address,
			TotalAmount: total,
			Items:       len(o.Orders),
		},
	}
}
