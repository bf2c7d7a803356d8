package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/Astemirdum/hotel-reservation/reservation/internal/errs"
	"github.com/Astemirdum/hotel-reservation/reservation/internal/model"
	"github.com/Astemirdum/hotel-reservation/reservation/internal/repository"
	"github.com/Astemirdum/hotel-reservation/reservation/internal/repository/memory"
	"github.com/stretchr/testify/require"
)

func day(d int) model.Date { return model.NewDate(2024, time.January, d) }

func insert(t *testing.T, s *memory.Store, rsv model.Reservation) model.Reservation {
	t.Helper()
	var out model.Reservation
	err := s.WithRoomLock(context.Background(), rsv.RoomNumber, func(ctx context.Context, tx repository.RoomTx) error {
		var err error
		out, err = tx.Insert(ctx, rsv)
		return err
	})
	require.NoError(t, err)
	return out
}

func TestStore_IsAvailable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.NewStore()
	existing := insert(t, s, model.Reservation{
		CustomerName: "Grace Hopper", RoomNumber: 7, StartDate: day(10), EndDate: day(15),
		Status: model.StatusPending, OwnerUserID: "grace",
	})
	insert(t, s, model.Reservation{
		CustomerName: "Cancelled Guest", RoomNumber: 8, StartDate: day(10), EndDate: day(15),
		Status: model.StatusCancelled, OwnerUserID: "grace",
	})

	tests := []struct {
		name string
		q    model.AvailabilityQuery
		want bool
	}{
		{name: "fully inside", q: model.AvailabilityQuery{RoomNumber: 7, StartDate: day(12), EndDate: day(14)}, want: false},
		{name: "touches checkout", q: model.AvailabilityQuery{RoomNumber: 7, StartDate: day(15), EndDate: day(18)}, want: true},
		{name: "touches check-in", q: model.AvailabilityQuery{RoomNumber: 7, StartDate: day(8), EndDate: day(10)}, want: true},
		{name: "spans existing", q: model.AvailabilityQuery{RoomNumber: 7, StartDate: day(5), EndDate: day(20)}, want: false},
		{name: "self excluded", q: model.AvailabilityQuery{RoomNumber: 7, StartDate: day(10), EndDate: day(15), ExcludeID: existing.ID}, want: true},
		{name: "cancelled ignored", q: model.AvailabilityQuery{RoomNumber: 8, StartDate: day(11), EndDate: day(13)}, want: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ok, err := s.IsAvailable(ctx, tt.q)
			require.NoError(t, err)
			require.Equal(t, tt.want, ok)
		})
	}
}

func TestStore_CRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.NewStore()

	first := insert(t, s, model.Reservation{CustomerName: "Alan Turing", RoomNumber: 1, StartDate: day(1), EndDate: day(2), Status: model.StatusPending, OwnerUserID: "alan"})
	second := insert(t, s, model.Reservation{CustomerName: "Alan Turing", RoomNumber: 2, StartDate: day(1), EndDate: day(2), Status: model.StatusPending, OwnerUserID: "alan"})
	require.Equal(t, 1, first.ID)
	require.Equal(t, 2, second.ID)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []model.Reservation{first, second}, list)

	err = s.WithRoomLock(ctx, 3, func(ctx context.Context, tx repository.RoomTx) error {
		upd := first
		upd.RoomNumber = 3
		upd.OwnerUserID = "mallory"
		return tx.Update(ctx, upd)
	})
	require.NoError(t, err)

	got, err := s.Get(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, 3, got.RoomNumber)
	require.Equal(t, "alan", got.OwnerUserID)

	deleted, err := s.Delete(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = s.Delete(ctx, first.ID)
	require.NoError(t, err)
	require.False(t, deleted)

	_, err = s.Get(ctx, first.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestStore_UnknownOwner(t *testing.T) {
	t.Parallel()
	s := memory.NewStore().WithOwners("alan")
	err := s.WithRoomLock(context.Background(), 1, func(ctx context.Context, tx repository.RoomTx) error {
		_, err := tx.Insert(ctx, model.Reservation{RoomNumber: 1, OwnerUserID: "eve"})
		return err
	})
	require.ErrorIs(t, err, errs.ErrUnknownOwner)
}
