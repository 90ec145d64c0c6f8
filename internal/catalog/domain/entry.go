package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("lesson not found")
	ErrInvalidID    = errors.New("invalid lesson id")
	ErrEmptyPatch   = errors.New("no valid fields to update")
	ErrInvalidPatch = errors.New("invalid lesson update")
)

// Entry is one bookable lesson. Capacity is the number of seats left.
type Entry struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Location  string    `json:"location"`
	Price     int64     `json:"price"`
	Capacity  int       `json:"spaces"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func NewEntry(subject, location string, price int64, capacity int) Entry {
	now := time.Now().UTC()
	return Entry{
		ID:        uuid.NewString(),
		Subject:   subject,
		Location:  location,
		Price:     price,
		Capacity:  capacity,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Patch is a partial update. Nil fields are left alone.
type Patch struct {
	Subject  *string `json:"subject"`
	Location *string `json:"location"`
	Price    *int64  `json:"price"`
	Capacity *int    `json:"spaces"`
	Image    *string `json:"image"`
}

func (p Patch) Empty() bool {
	return p.Subject == nil && p.Location == nil && p.Price == nil && p.Capacity == nil && p.Image == nil
}

func (p Patch) Validate() error {
	if p.Empty() {
		return ErrEmptyPatch
	}
	if p.Capacity != nil && *p.Capacity < 0 {
		return fmt.Errorf("%w: spaces must be a number >= 0", ErrInvalidPatch)
	}
	if p.Capacity != nil && *p.Capacity > math.MaxInt32 {
		return fmt.Errorf("%w: spaces is too large", ErrInvalidPatch)
	}
	if p.Price != nil && *p.Price < 0 {
		return fmt.Errorf("%w: price must be a number >= 0", ErrInvalidPatch)
	}
	if p.Subject != nil && strings.TrimSpace(*p.Subject) == "" {
		return fmt.Errorf("%w: subject must not be empty", ErrInvalidPatch)
	}
	if p.Location != nil && strings.TrimSpace(*p.Location) == "" {
		return fmt.Errorf("%w: location must not be empty", ErrInvalidPatch)
	}
	return nil
}

func (p Patch) Apply(e *Entry) {
	if p.Subject != nil {
		e.Subject = *p.Subject
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Price != nil {
		e.Price = *p.Price
	}
	if p.Capacity != nil {
		e.Capacity = *p.Capacity
	}
	if p.Image != nil {
		e.Image = *p.Image
	}
	e.UpdatedAt = time.Now().UTC()
}
