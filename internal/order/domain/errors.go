package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidID     = errors.New("invalid order id")

	// ErrInvariantViolation marks a state the unit of work should make
	// impossible, such as a commit that produced no order id.
	ErrInvariantViolation = errors.New("reservation invariant violated")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// MaxQuantity is the largest seat count one line item may ask for. Seat
// counts are stored as 32-bit integers.
const MaxQuantity = math.MaxInt32

// ValidateReservation checks a request before any store is touched.
// Repeated lesson ids are allowed and are reserved one after the other.
func ValidateReservation(customer Customer, items []LineItem) error {
	if strings.TrimSpace(customer.Name) == "" {
		return invalid("customerName", "must not be empty")
	}
	if strings.TrimSpace(customer.Phone) == "" {
		return invalid("customerPhone", "must not be empty")
	}
	if len(items) == 0 {
		return invalid("items", "must not be empty")
	}
	for i, it := range items {
		if _, err := uuid.Parse(it.EntryID); err != nil {
			return invalid(fmt.Sprintf("items[%d].entryId", i), "must be a lesson id")
		}
		if it.Quantity <= 0 {
			return invalid(fmt.Sprintf("items[%d].quantity", i), "must be a positive integer")
		}
		if it.Quantity > MaxQuantity {
			return invalid(fmt.Sprintf("items[%d].quantity", i), "is too large")
		}
	}
	return nil
}

func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
