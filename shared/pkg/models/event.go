package models

import (
	"errors"
	"time"
)

var ErrIncompleteEvent = errors.New("event is missing id or order_id")

// Event wraps every message published to the events exchange. Version is
// bumped when Payload changes shape.
type Event[T any] struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Version int       `json:"version"`
	Time    time.Time `json:"time"`
	OrderID string    `json:"order_id"`
	Payload T         `json:"payload"`
}

func (e Event[T]) Check() error {
	if e.ID == "" || e.OrderID == "" {
		return ErrIncompleteEvent
	}
	return nil
}
