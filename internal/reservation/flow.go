// Package reservation implements the booking submission flow and the
// status presentation rules for reservation lists.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/joaomvale/turvia/internal/booking"
	"github.com/joaomvale/turvia/internal/client/api"
	"github.com/joaomvale/turvia/internal/models"
)

// Validation and guard failures. These never reach the network.
var (
	ErrAuthRequired       = errors.New("authentication required")
	ErrInvalidDateRange   = errors.New("check-out must be after check-in")
	ErrInvalidGuestCount  = errors.New("at least one guest is required")
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
)

// SubmissionError is a create-reservation call the backend rejected or
// that failed in transit. The message is whatever the server said.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string { return e.Err.Error() }
func (e *SubmissionError) Unwrap() error { return e.Err }

// State is the phase of a single submission.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is the read-only view of auth state the flow guards on.
type Session interface {
	User() *models.User
}

// Creator issues the create-reservation call.
type Creator interface {
	CreateReservation(ctx context.Context, in api.ReservationInput) (*models.Reservation, error)
}

// Form holds the user's pending input, dates as typed ("YYYY-MM-DD").
// It is kept across failed submissions so nothing has to be re-entered
// and wiped after a successful one.
type Form struct {
	CheckIn  string
	CheckOut string
	Guests   int
}

// NewForm returns an empty form with the guest count at its minimum.
func NewForm() Form {
	return Form{Guests: 1}
}

// Reset returns the form to its initial empty state.
func (f *Form) Reset() {
	*f = NewForm()
}

// Flow runs one reservation submission at a time. A Flow belongs to a
// single booking form; its state is private to that form.
type Flow struct {
	session Session
	api     Creator
	log     *zap.Logger

	mu    sync.Mutex
	state State
}

// NewFlow returns an idle flow bound to the given session and backend.
func NewFlow(session Session, api Creator, log *zap.Logger) *Flow {
	return &Flow{session: session, api: api, log: log}
}

// State returns the current phase.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Reset returns a finished flow to idle so the form can be reused.
func (f *Flow) Reset() {
	f.mu.Lock()
	f.state = StateIdle
	f.mu.Unlock()
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

// begin moves the flow into Validating unless a submission is already
// running.
func (f *Flow) begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting {
		return ErrSubmissionInFlight
	}
	f.state = StateValidating
	return nil
}

// Submit runs the whole flow for one attempt: session guard, local
// validation, price computation, then the network call. The form is
// reset only on success; on any failure it keeps the user's input for
// a retry.
func (f *Flow) Submit(ctx context.Context, hotel *models.Hotel, form *Form) (*models.Reservation, error) {
	if err := f.begin(); err != nil {
		return nil, err
	}

	user := f.session.User()
	if user == nil {
		f.setState(StateFailed)
		return nil, ErrAuthRequired
	}

	checkIn, err := models.ParseDate(form.CheckIn)
	if err != nil {
		f.setState(StateFailed)
		return nil, fmt.Errorf("%w: bad check-in", ErrInvalidDateRange)
	}
	checkOut, err := models.ParseDate(form.CheckOut)
	if err != nil {
		f.setState(StateFailed)
		return nil, fmt.Errorf("%w: bad check-out", ErrInvalidDateRange)
	}

	nights := booking.Nights(checkIn.Time, checkOut.Time)
	if nights <= 0 {
		f.setState(StateFailed)
		return nil, ErrInvalidDateRange
	}
	if form.Guests < 1 {
		f.setState(StateFailed)
		return nil, ErrInvalidGuestCount
	}

	f.setState(StateSubmitting)

	total := booking.Total(nights, hotel.PricePerNight)
	res, err := f.api.CreateReservation(ctx, api.ReservationInput{
		HotelID:    hotel.ID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     form.Guests,
		TotalPrice: total,
	})
	if err != nil {
		f.setState(StateFailed)
		f.log.Warn("reservation submission rejected",
			zap.String("hotel", hotel.ID),
			zap.Error(err))
		return nil, &SubmissionError{Err: err}
	}

	f.setState(StateSucceeded)
	form.Reset()
	f.log.Info("reservation created",
		zap.String("id", res.ID),
		zap.Int("nights", nights),
		zap.Int64("total", total))
	return res, nil
}
