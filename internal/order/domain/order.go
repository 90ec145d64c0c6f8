package domain

import (
	"time"
)

type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// LineItem asks for Quantity seats of one lesson.
type LineItem struct {
	EntryID  string `json:"entryId"`
	Quantity int    `json:"quantity"`
}

// Order is immutable once placed. ID is empty until the order log assigns one.
type Order struct {
	ID        string     `json:"id"`
	Customer  Customer   `json:"customer"`
	Items     []LineItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
}

// NewOrder copies items so later changes to the caller's slice cannot leak in.
func NewOrder(customer Customer, items []LineItem, now time.Time) Order {
	return Order{
		Customer:  customer,
		Items:     append([]LineItem(nil), items...),
		CreatedAt: now.UTC(),
	}
}

func (o Order) Seats() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}
