package reservation

import "github.com/joaomvale/turvia/internal/models"

// Severity is the visual weight a status renders with.
type Severity string

const (
	SeverityNeutral  Severity = "neutral"
	SeverityPositive Severity = "positive"
	SeverityNegative Severity = "negative"
	// SeverityOutline is the fallback treatment for statuses this
	// client does not know about.
	SeverityOutline Severity = "outline"
)

// Badge is how a status is displayed.
type Badge struct {
	Label    string
	Severity Severity
}

var statusBadges = map[models.ReservationStatus]Badge{
	models.StatusPending:   {Label: "Pendente", Severity: SeverityNeutral},
	models.StatusConfirmed: {Label: "Confirmada", Severity: SeverityPositive},
	models.StatusCancelled: {Label: "Cancelada", Severity: SeverityNegative},
}

// StatusBadge maps a status to its display form. A status the client
// does not recognize renders with its raw value rather than failing,
// so new server-side statuses degrade gracefully.
func StatusBadge(status models.ReservationStatus) Badge {
	if b, ok := statusBadges[status]; ok {
		return b
	}
	return Badge{Label: string(status), Severity: SeverityOutline}
}

// CanTransition reports whether actor may move the reservation to the
// target status. Confirming is admin-only; cancelling is open to the
// admin or the owning user; CANCELLED is terminal and repeating the
// current status is a no-op, both disallowed.
func CanTransition(r *models.Reservation, target models.ReservationStatus, actor *models.User) bool {
	if actor == nil || target == r.Status {
		return false
	}
	admin := actor.IsAdmin()
	owner := actor.ID == r.UserID

	switch r.Status {
	case models.StatusPending:
		switch target {
		case models.StatusConfirmed:
			return admin
		case models.StatusCancelled:
			return admin || owner
		}
	case models.StatusConfirmed:
		if target == models.StatusCancelled {
			return admin || owner
		}
	}
	return false
}

// AllowedTransitions lists the statuses actor may move the reservation
// to, in the order the UI offers them.
func AllowedTransitions(r *models.Reservation, actor *models.User) []models.ReservationStatus {
	var out []models.ReservationStatus
	for _, target := range []models.ReservationStatus{models.StatusConfirmed, models.StatusCancelled} {
		if CanTransition(r, target, actor) {
			out = append(out, target)
		}
	}
	return out
}

// FilterAll is the filter value meaning "no filter".
const FilterAll = "all"

// FilterByStatus returns the reservations whose status matches,
// preserving order. "all" (or empty) returns the list unchanged. The
// input is never mutated.
func FilterByStatus(list []models.Reservation, status string) []models.Reservation {
	if status == FilterAll || status == "" {
		return list
	}
	var out []models.Reservation
	for _, r := range list {
		if string(r.Status) == status {
			out = append(out, r)
		}
	}
	return out
}
