package handler

import "github.com/Astemirdum/hotel-reservation/reservation/internal/model"

// ReservationRequest is the client-settable part of a reservation. Id and
// owner never come from the body.
type ReservationRequest struct {
	CustomerName string       `json:"customerName" validate:"required,min=3,max=100"`
	StartDate    model.Date   `json:"startDate"`
	EndDate      model.Date   `json:"endDate"`
	RoomNumber   int          `json:"roomNumber" validate:"gt=0"`
	Status       model.Status `json:"status" validate:"omitempty,oneof=PENDING CONFIRMED CANCELLED"`
}

func (r ReservationRequest) toModel() model.Reservation {
	return model.Reservation{
		CustomerName: r.CustomerName,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		RoomNumber:   r.RoomNumber,
		Status:       r.Status,
	}
}

type AvailabilityResponse struct {
	Available bool `json:"available"`
}
