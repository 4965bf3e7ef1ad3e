// Package admin implements the role-gated mutation flows: changing a
// reservation's status and changing a user's role. Both follow
// reload-after-write: the full list is re-fetched from the backend
// after a successful mutation instead of patching local state, so any
// server-side cascades are picked up.
package admin

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/joaomvale/turvia/internal/models"
)

// ErrAdminRequired reports a gated operation attempted without the
// ADMIN role. No network call is made.
var ErrAdminRequired = errors.New("admin role required")

// API is the slice of the backend the admin flows use.
type API interface {
	UpdateReservationStatus(ctx context.Context, id string, status models.ReservationStatus) (*models.Reservation, error)
	AllReservations(ctx context.Context) ([]models.Reservation, error)
	UpdateUserRole(ctx context.Context, id string, role models.Role) (*models.User, error)
	Users(ctx context.Context) ([]models.User, error)
}

// Session is the read-only view of auth state the guards consult.
type Session interface {
	IsAdmin() bool
}

// Service runs the admin mutations.
type Service struct {
	api     API
	session Session
	log     *zap.Logger
}

// NewService returns a Service bound to the given session and backend.
func NewService(api API, session Session, log *zap.Logger) *Service {
	return &Service{api: api, session: session, log: log}
}

// SetReservationStatus moves a reservation to the target status and
// returns the reloaded list. The reload is issued only after the
// mutation resolves; on failure nothing is re-fetched and the caller's
// displayed state stays as it was.
func (s *Service) SetReservationStatus(ctx context.Context, id string, target models.ReservationStatus) ([]models.Reservation, error) {
	if !s.session.IsAdmin() {
		return nil, ErrAdminRequired
	}
	if _, err := s.api.UpdateReservationStatus(ctx, id, target); err != nil {
		return nil, err
	}
	s.log.Info("reservation status updated",
		zap.String("id", id),
		zap.String("status", string(target)))
	return s.api.AllReservations(ctx)
}

// SetUserRole changes a user's role and returns the reloaded user
// list. There is no guard against an admin demoting their own account;
// the backend permits it.
func (s *Service) SetUserRole(ctx context.Context, id string, role models.Role) ([]models.User, error) {
	if !s.session.IsAdmin() {
		return nil, ErrAdminRequired
	}
	if _, err := s.api.UpdateUserRole(ctx, id, role); err != nil {
		return nil, err
	}
	s.log.Info("user role updated",
		zap.String("id", id),
		zap.String("role", string(role)))
	return s.api.Users(ctx)
}
