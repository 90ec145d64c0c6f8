package domain

import "time"

const EventOrderPlaced = "OrderPlaced"

type OrderPlaced struct {
	OrderID   string     `json:"orderId"`
	Customer  string     `json:"customer"`
	Items     []LineItem `json:"items"`
	Seats     int        `json:"seats"`
	CreatedAt time.Time  `json:"createdAt"`
}

func NewOrderPlaced(o Order) OrderPlaced {
	return OrderPlaced{
		OrderID:   o.ID,
		Customer:  o.Customer.Name,
		Items:     o.Items,
		Seats:     o.Seats(),
		CreatedAt: o.CreatedAt,
	}
}
