package reservation_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/joaomvale/turvia/internal/client/api"
	"github.com/joaomvale/turvia/internal/models"
	"github.com/joaomvale/turvia/internal/reservation"
)

type fakeSession struct {
	user *models.User
}

func (f *fakeSession) User() *models.User { return f.user }

type fakeCreator struct {
	mu    sync.Mutex
	calls int
	last  api.ReservationInput
	fn    func(ctx context.Context, in api.ReservationInput) (*models.Reservation, error)
}

func (f *fakeCreator) CreateReservation(ctx context.Context, in api.ReservationInput) (*models.Reservation, error) {
	f.mu.Lock()
	f.calls++
	f.last = in
	f.mu.Unlock()
	return f.fn(ctx, in)
}

func (f *fakeCreator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func guest() *models.User {
	return &models.User{ID: "u1", Name: "Ana", Role: models.RoleUser}
}

func testHotel() *models.Hotel {
	return &models.Hotel{ID: "h1", Name: "Hotel Baía", PricePerNight: 15000}
}

func TestSubmit_AuthRequired(t *testing.T) {
	creator := &fakeCreator{fn: func(context.Context, api.ReservationInput) (*models.Reservation, error) {
		t.Fatal("network call issued for unauthenticated submission")
		return nil, nil
	}}
	flow := reservation.NewFlow(&fakeSession{user: nil}, creator, zap.NewNop())
	form := reservation.Form{CheckIn: "2024-06-01", CheckOut: "2024-06-04", Guests: 2}

	_, err := flow.Submit(context.Background(), testHotel(), &form)
	if !errors.Is(err, reservation.ErrAuthRequired) {
		t.Fatalf("err = %v; want ErrAuthRequired", err)
	}
	if creator.callCount() != 0 {
		t.Errorf("expected no network calls, got %d", creator.callCount())
	}
	if flow.State() != reservation.StateFailed {
		t.Errorf("state = %s; want failed", flow.State())
	}
}

func TestSubmit_LocalValidation(t *testing.T) {
	tests := []struct {
		name    string
		form    reservation.Form
		wantErr error
	}{
		{
			name:    "reversed range",
			form:    reservation.Form{CheckIn: "2024-06-04", CheckOut: "2024-06-01", Guests: 2},
			wantErr: reservation.ErrInvalidDateRange,
		},
		{
			name:    "same day",
			form:    reservation.Form{CheckIn: "2024-06-01", CheckOut: "2024-06-01", Guests: 2},
			wantErr: reservation.ErrInvalidDateRange,
		},
		{
			name:    "unparseable check-in",
			form:    reservation.Form{CheckIn: "junho", CheckOut: "2024-06-04", Guests: 2},
			wantErr: reservation.ErrInvalidDateRange,
		},
		{
			name:    "zero guests",
			form:    reservation.Form{CheckIn: "2024-06-01", CheckOut: "2024-06-04", Guests: 0},
			wantErr: reservation.ErrInvalidGuestCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := &fakeCreator{fn: func(context.Context, api.ReservationInput) (*models.Reservation, error) {
				t.Fatal("network call issued for locally invalid submission")
				return nil, nil
			}}
			flow := reservation.NewFlow(&fakeSession{user: guest()}, creator, zap.NewNop())

			_, err := flow.Submit(context.Background(), testHotel(), &tt.form)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v; want %v", err, tt.wantErr)
			}
			if creator.callCount() != 0 {
				t.Errorf("expected no network calls, got %d", creator.callCount())
			}
		})
	}
}

func TestSubmit_SuccessResetsForm(t *testing.T) {
	creator := &fakeCreator{fn: func(_ context.Context, in api.ReservationInput) (*models.Reservation, error) {
		return &models.Reservation{
			ID:         "r1",
			HotelID:    in.HotelID,
			CheckIn:    in.CheckIn,
			CheckOut:   in.CheckOut,
			Guests:     in.Guests,
			TotalPrice: in.TotalPrice,
			Status:     models.StatusPending,
		}, nil
	}}
	flow := reservation.NewFlow(&fakeSession{user: guest()}, creator, zap.NewNop())
	form := reservation.Form{CheckIn: "2024-06-01", CheckOut: "2024-06-04", Guests: 2}

	res, err := flow.Submit(context.Background(), testHotel(), &form)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	// 3 nights at 15000 computed client-side.
	if creator.last.TotalPrice != 45000 {
		t.Errorf("submitted total = %d; want 45000", creator.last.TotalPrice)
	}
	if res.Status != models.StatusPending {
		t.Errorf("status = %s; want PENDING", res.Status)
	}
	if flow.State() != reservation.StateSucceeded {
		t.Errorf("state = %s; want succeeded", flow.State())
	}
	if form.CheckIn != "" || form.CheckOut != "" || form.Guests != 1 {
		t.Errorf("form not reset after success: %+v", form)
	}
}

func TestSubmit_RemoteRejectionKeepsForm(t *testing.T) {
	creator := &fakeCreator{fn: func(context.Context, api.ReservationInput) (*models.Reservation, error) {
		return nil, &api.Error{StatusCode: 409, Message: "Hotel indisponível nessas datas"}
	}}
	flow := reservation.NewFlow(&fakeSession{user: guest()}, creator, zap.NewNop())
	form := reservation.Form{CheckIn: "2024-06-01", CheckOut: "2024-06-04", Guests: 2}

	_, err := flow.Submit(context.Background(), testHotel(), &form)
	var subErr *reservation.SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("err = %T; want *SubmissionError", err)
	}
	// The server's message survives verbatim.
	if subErr.Error() != "Hotel indisponível nessas datas" {
		t.Errorf("message = %q", subErr.Error())
	}
	if form.CheckIn != "2024-06-01" || form.Guests != 2 {
		t.Errorf("form was cleared on failure: %+v", form)
	}
	if flow.State() != reservation.StateFailed {
		t.Errorf("state = %s; want failed", flow.State())
	}
}

func TestSubmit_TimeoutClassified(t *testing.T) {
	creator := &fakeCreator{fn: func(context.Context, api.ReservationInput) (*models.Reservation, error) {
		return nil, fmt.Errorf("POST /reservas: %w", api.ErrTimeout)
	}}
	flow := reservation.NewFlow(&fakeSession{user: guest()}, creator, zap.NewNop())
	form := reservation.Form{CheckIn: "2024-06-01", CheckOut: "2024-06-04", Guests: 2}

	_, err := flow.Submit(context.Background(), testHotel(), &form)
	if !errors.Is(err, api.ErrTimeout) {
		t.Fatalf("err = %v; want wrapped ErrTimeout", err)
	}
}

func TestSubmit_SingleInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	creator := &fakeCreator{fn: func(context.Context, api.ReservationInput) (*models.Reservation, error) {
		close(started)
		<-release
		return &models.Reservation{ID: "r1", Status: models.StatusPending}, nil
	}}
	flow := reservation.NewFlow(&fakeSession{user: guest()}, creator, zap.NewNop())

	first := reservation.Form{CheckIn: "2024-06-01", CheckOut: "2024-06-04", Guests: 2}
	done := make(chan error, 1)
	go func() {
		_, err := flow.Submit(context.Background(), testHotel(), &first)
		done <- err
	}()

	<-started
	second := reservation.Form{CheckIn: "2024-06-01", CheckOut: "2024-06-04", Guests: 2}
	_, err := flow.Submit(context.Background(), testHotel(), &second)
	if !errors.Is(err, reservation.ErrSubmissionInFlight) {
		t.Fatalf("err = %v; want ErrSubmissionInFlight", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submission failed: %v", err)
	}
	if creator.callCount() != 1 {
		t.Errorf("network calls = %d; want 1", creator.callCount())
	}
}

func TestFlow_ResetReturnsToIdle(t *testing.T) {
	flow := reservation.NewFlow(&fakeSession{user: nil}, &fakeCreator{}, zap.NewNop())
	form := reservation.Form{CheckIn: "2024-06-01", CheckOut: "2024-06-04", Guests: 1}
	_, _ = flow.Submit(context.Background(), testHotel(), &form)

	flow.Reset()
	if flow.State() != reservation.StateIdle {
		t.Errorf("state after Reset = %s; want idle", flow.State())
	}
}
