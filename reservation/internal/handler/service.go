package handler

import (
	"context"

	"github.com/Astemirdum/hotel-reservation/reservation/internal/model"
	"github.com/Astemirdum/hotel-reservation/reservation/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type ReservationService interface {
	ListAll(ctx context.Context) ([]model.Reservation, error)
	GetByID(ctx context.Context, id int) (model.Reservation, error)
	Create(ctx context.Context, rsv *model.Reservation) (bool, error)
	Update(ctx context.Context, rsv *model.Reservation) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
	IsRoomAvailable(ctx context.Context, q model.AvailabilityQuery) (bool, error)
}

var _ ReservationService = (*service.Service)(nil)
