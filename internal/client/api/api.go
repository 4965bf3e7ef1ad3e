// Package api implements the HTTP client for the tourism backend. It
// covers every endpoint the application uses and attaches the bearer
// token to each request that has one.
//
// Trust note: reservation totals are computed by this client and sent
// as data (see the booking package); the backend is trusted to accept
// them as-is. A hardened backend would recompute and reject mismatches.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joaomvale/turvia/internal/models"
)

// ErrTimeout reports that a request exceeded the configured deadline.
var ErrTimeout = errors.New("request timed out")

// Error is a non-2xx response from the backend. Message carries the
// response body verbatim so server-side validation text reaches the
// user unchanged.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// TokenSource supplies the bearer token for outgoing requests. An
// empty string means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// Client talks to the backend. All methods are safe for concurrent use
// as long as the underlying http.Client is.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     *zap.Logger
}

// New returns a Client rooted at baseURL. httpClient may carry a
// Timeout; tokens may not be nil; log may be zap.NewNop().
func New(baseURL string, httpClient *http.Client, tokens TokenSource, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
		log:     log,
	}
}

// do issues one request and decodes the JSON response into out when
// out is non-nil. Non-2xx responses come back as *Error with the body
// text verbatim.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return fmt.Errorf("%s %s: %w", method, path, ErrTimeout)
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("request done",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(resp.Body)
		return &Error{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}
	return nil
}

// --- auth ---

// Login exchanges credentials for a token and the account it belongs to.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	in := map[string]string{"email": email, "password": password}
	var out models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and logs it in, in one call.
func (c *Client) Register(ctx context.Context, name, email, password string) (*models.AuthResponse, error) {
	in := map[string]string{"name": name, "email": email, "password": password}
	var out models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the account the current token belongs to.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- cities ---

func (c *Client) Cities(ctx context.Context) ([]models.City, error) {
	var out []models.City
	if err := c.do(ctx, http.MethodGet, "/cities", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) City(ctx context.Context, id string) (*models.City, error) {
	var out models.City
	if err := c.do(ctx, http.MethodGet, "/cities/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CityInput is the admin payload for creating or updating a city.
type CityInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
}

func (c *Client) CreateCity(ctx context.Context, in CityInput) (*models.City, error) {
	var out models.City
	if err := c.do(ctx, http.MethodPost, "/cities", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCity(ctx context.Context, id string, in CityInput) (*models.City, error) {
	var out models.City
	if err := c.do(ctx, http.MethodPut, "/cities/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCity(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/cities/"+id, nil, nil)
}

// --- hotels ---

func (c *Client) Hotels(ctx context.Context) ([]models.Hotel, error) {
	var out []models.Hotel
	if err := c.do(ctx, http.MethodGet, "/hotels", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Hotel(ctx context.Context, id string) (*models.Hotel, error) {
	var out models.Hotel
	if err := c.do(ctx, http.MethodGet, "/hotels/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HotelInput is the admin payload for creating or updating a hotel.
type HotelInput struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	PricePerNight int64  `json:"pricePerNight"`
	CityID        string `json:"cityId"`
	Address       string `json:"address,omitempty"`
	Image         string `json:"image,omitempty"`
}

func (c *Client) CreateHotel(ctx context.Context, in HotelInput) (*models.Hotel, error) {
	var out models.Hotel
	if err := c.do(ctx, http.MethodPost, "/hotels", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateHotel(ctx context.Context, id string, in HotelInput) (*models.Hotel, error) {
	var out models.Hotel
	if err := c.do(ctx, http.MethodPut, "/hotels/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteHotel(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/hotels/"+id, nil, nil)
}

// --- attractions ---

func (c *Client) Attractions(ctx context.Context) ([]models.Attraction, error) {
	var out []models.Attraction
	if err := c.do(ctx, http.MethodGet, "/attractions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Attraction(ctx context.Context, id string) (*models.Attraction, error) {
	var out models.Attraction
	if err := c.do(ctx, http.MethodGet, "/attractions/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AttractionInput is the admin payload for creating or updating an
// attraction.
type AttractionInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CityID      string `json:"cityId"`
	Image       string `json:"image,omitempty"`
}

func (c *Client) CreateAttraction(ctx context.Context, in AttractionInput) (*models.Attraction, error) {
	var out models.Attraction
	if err := c.do(ctx, http.MethodPost, "/attractions", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAttraction(ctx context.Context, id string, in AttractionInput) (*models.Attraction, error) {
	var out models.Attraction
	if err := c.do(ctx, http.MethodPut, "/attractions/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAttraction(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/attractions/"+id, nil, nil)
}

// --- reviews ---

// ReviewInput targets exactly one of a hotel or a city.
type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	HotelID string `json:"hotelId,omitempty"`
	CityID  string `json:"cityId,omitempty"`
}

func (c *Client) CreateReview(ctx context.Context, in ReviewInput) (*models.Review, error) {
	var out models.Review
	if err := c.do(ctx, http.MethodPost, "/reviews", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) HotelReviews(ctx context.Context, hotelID string) ([]models.Review, error) {
	var out []models.Review
	if err := c.do(ctx, http.MethodGet, "/hotels/"+hotelID+"/reviews", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CityReviews(ctx context.Context, cityID string) ([]models.Review, error) {
	var out []models.Review
	if err := c.do(ctx, http.MethodGet, "/reviews/city/"+cityID, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- reservations ---

// ReservationInput is the payload for creating a reservation. The
// backend keeps the Portuguese route name.
type ReservationInput struct {
	HotelID    string      `json:"hotelId"`
	CheckIn    models.Date `json:"checkIn"`
	CheckOut   models.Date `json:"checkOut"`
	Guests     int         `json:"guests"`
	TotalPrice int64       `json:"totalPrice"`
}

func (c *Client) CreateReservation(ctx context.Context, in ReservationInput) (*models.Reservation, error) {
	var out models.Reservation
	if err := c.do(ctx, http.MethodPost, "/reservas", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserReservations lists reservations belonging to one user.
func (c *Client) UserReservations(ctx context.Context, userID string) ([]models.Reservation, error) {
	var out []models.Reservation
	if err := c.do(ctx, http.MethodGet, "/reservas/user/"+userID, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AllReservations lists every reservation in the system. Admin only.
func (c *Client) AllReservations(ctx context.Context) ([]models.Reservation, error) {
	var out []models.Reservation
	if err := c.do(ctx, http.MethodGet, "/reservas", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateReservationStatus moves a reservation to the target status.
// Used both by owners (cancel) and admins (confirm/cancel); the
// backend enforces who may do what.
func (c *Client) UpdateReservationStatus(ctx context.Context, id string, status models.ReservationStatus) (*models.Reservation, error) {
	in := map[string]models.ReservationStatus{"status": status}
	var out models.Reservation
	if err := c.do(ctx, http.MethodPatch, "/reservas/"+id+"/status", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- users (admin) ---

func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateUserRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	in := map[string]models.Role{"role": role}
	var out models.User
	if err := c.do(ctx, http.MethodPatch, "/users/"+id+"/role", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
