package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Astemirdum/hotel-reservation/reservation/internal/errs"
	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

const (
	customerNameMin = 3
	customerNameMax = 100
)

type Reservation struct {
	ID           int    `json:"id" db:"id"`
	CustomerName string `json:"customerName" db:"customer_name"`
	StartDate    Date   `json:"startDate" db:"start_date"`
	EndDate      Date   `json:"endDate" db:"end_date"`
	RoomNumber   int    `json:"roomNumber" db:"room_number"`
	Status       Status `json:"status" db:"status"`
	OwnerUserID  string `json:"ownerUserId" db:"owner_user_id"`
}

// Validate checks the reservation's own fields against today.
// It never looks at other reservations.
func (r *Reservation) Validate(today Date) error {
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return errs.ErrDatesRequired
	}
	if r.StartDate.Before(today) {
		return errs.ErrStartInPast
	}
	if r.EndDate.Before(r.StartDate) {
		return errs.ErrEndBeforeStart
	}
	if r.RoomNumber <= 0 {
		return errs.ErrInvalidRoom
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(r.CustomerName)); n < customerNameMin || n > customerNameMax {
		return errs.ErrCustomerName
	}
	return nil
}

func (r *Reservation) IsValid(today Date) bool {
	return r.Validate(today) == nil
}

// Nights is the number of nights the stay occupies.
func (r *Reservation) Nights() int {
	return int(r.EndDate.Sub(r.StartDate.Time) / (24 * time.Hour))
}

// Blocks reports whether r makes the room unavailable for q.
func (r *Reservation) Blocks(q AvailabilityQuery) bool {
	if r.RoomNumber != q.RoomNumber || r.Status == StatusCancelled {
		return false
	}
	if q.ExcludeID != 0 && r.ID == q.ExcludeID {
		return false
	}
	return Overlaps(q.StartDate, q.EndDate, r.StartDate, r.EndDate)
}

// Overlaps tests half-open intervals [aStart, aEnd) and [bStart, bEnd),
// so a checkout day may be another stay's check-in day.
func Overlaps(aStart, aEnd, bStart, bEnd Date) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// AvailabilityQuery asks whether RoomNumber is free over [StartDate, EndDate).
// ExcludeID skips one reservation (its own previous version on update);
// zero means no exclusion.
type AvailabilityQuery struct {
	RoomNumber int
	StartDate  Date
	EndDate    Date
	ExcludeID  int
}

type EventType string

const (
	EventCreated EventType = "reservation.created"
	EventUpdated EventType = "reservation.updated"
	EventDeleted EventType = "reservation.deleted"
)

type Event struct {
	EventID     uuid.UUID   `json:"eventId"`
	Type        EventType   `json:"type"`
	Timestamp   time.Time   `json:"timestamp"`
	Reservation Reservation `json:"reservation"`
}

func NewEvent(typ EventType, rsv Reservation, ts time.Time) Event {
	return Event{
		EventID:     uuid.New(),
		Type:        typ,
		Timestamp:   ts.UTC(),
		Reservation: rsv,
	}
}
