// Package models defines the core data structures exchanged with the
// tourism backend: users, cities, hotels, attractions, reviews and
// reservations.
package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date (no time-of-day component) serialized as
// "YYYY-MM-DD" in request and response bodies.
type Date struct {
	time.Time
}

// ParseDate parses a "YYYY-MM-DD" string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

// MarshalJSON encodes the date as a quoted "YYYY-MM-DD" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON accepts both bare dates and full RFC 3339 timestamps,
// since the backend stores reservation dates in timestamp columns.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q", s)
	}
	d.Time = t
	return nil
}

// Role identifies the access level the server assigned to a user.
type Role string

const (
	// RoleUser is the default role for registered users.
	RoleUser Role = "USER"
	// RoleAdmin grants access to the admin mutation endpoints.
	RoleAdmin Role = "ADMIN"
)

// User represents an account as returned by the backend. Role is
// server-assigned; the client only ever reads it.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user's role is ADMIN. It is always
// derived from Role, never stored as its own field.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// City is a destination. Hotels and attractions reference it by ID.
type City struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Hotel is a bookable property belonging to a city.
type Hotel struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	PricePerNight int64     `json:"pricePerNight"`
	CityID        string    `json:"cityId"`
	City          *City     `json:"city,omitempty"`
	Address       string    `json:"address,omitempty"`
	Image         string    `json:"image,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Attraction is a point of interest belonging to a city.
type Attraction struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CityID      string    `json:"cityId"`
	City        *City     `json:"city,omitempty"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Review is a rating left for exactly one of a hotel or a city.
// HotelID and CityID are mutually exclusive.
type Review struct {
	ID        string    `json:"id"`
	Rating    int       `json:"rating"` // 1..5
	Comment   string    `json:"comment"`
	UserID    string    `json:"userId"`
	User      *User     `json:"user,omitempty"`
	HotelID   string    `json:"hotelId,omitempty"`
	CityID    string    `json:"cityId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	// StatusPending means the reservation awaits admin confirmation.
	StatusPending ReservationStatus = "PENDING"
	// StatusConfirmed means an admin accepted the reservation.
	StatusConfirmed ReservationStatus = "CONFIRMED"
	// StatusCancelled means the owner or an admin cancelled it. Terminal.
	StatusCancelled ReservationStatus = "CANCELLED"
)

// Reservation is a stay booked at a hotel. CheckIn, CheckOut, guests
// and price are fixed at creation; only Status mutates afterwards.
type Reservation struct {
	ID         string            `json:"id"`
	UserID     string            `json:"userId"`
	HotelID    string            `json:"hotelId"`
	User       *User             `json:"user,omitempty"`
	Hotel      *Hotel            `json:"hotel,omitempty"`
	CheckIn    Date              `json:"checkIn"`
	CheckOut   Date              `json:"checkOut"`
	Guests     int               `json:"guests"`
	TotalPrice int64             `json:"totalPrice"`
	Status     ReservationStatus `json:"status"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// AuthResponse is the body returned by the login and register endpoints.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
