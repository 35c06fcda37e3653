// Package queue defines message payloads exchanged over the message broker.
package queue

import "time"

// Event types published by the storefront.
const (
    EventUserRegistered = "user.registered"
    EventProductAdded   = "product.added"
    EventProductRemoved = "product.removed"
)

// Event is a storefront domain event.  It carries enough information for
// downstream consumers to log or trigger analytics without querying the
// primary store.  Fields that do not apply to a given type are left empty.
type Event struct {
    Type       string    `json:"type"`
    UserID     string    `json:"user_id,omitempty"`
    Email      string    `json:"email,omitempty"`
    ProductID  int64     `json:"product_id,omitempty"`
    Name       string    `json:"name,omitempty"`
    Category   string    `json:"category,omitempty"`
    NewPrice   float64   `json:"new_price,omitempty"`
    OldPrice   float64   `json:"old_price,omitempty"`
    OccurredAt time.Time `json:"occurred_at"`
}
