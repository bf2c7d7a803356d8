package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/Astemirdum/hotel-reservation/reservation/internal/errs"
	"github.com/Astemirdum/hotel-reservation/reservation/internal/model"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func Test_availabilityQuery(t *testing.T) {
	t.Parallel()
	start := model.NewDate(2024, time.January, 10)
	end := model.NewDate(2024, time.January, 15)

	tests := []struct {
		name     string
		q        model.AvailabilityQuery
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "without exclusion",
			q:        model.AvailabilityQuery{RoomNumber: 12, StartDate: start, EndDate: end},
			wantSQL:  "SELECT EXISTS ( SELECT 1 FROM reservation WHERE room_number = $1 AND status <> $2 AND start_date < $3 AND end_date > $4 )",
			wantArgs: []any{12, "CANCELLED", end, start},
		},
		{
			name:     "excluding itself",
			q:        model.AvailabilityQuery{RoomNumber: 12, StartDate: start, EndDate: end, ExcludeID: 3},
			wantSQL:  "SELECT EXISTS ( SELECT 1 FROM reservation WHERE room_number = $1 AND status <> $2 AND id <> $3 AND start_date < $4 AND end_date > $5 )",
			wantArgs: []any{12, "CANCELLED", 3, end, start},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q, args, err := availabilityQuery(tt.q).ToSql()
			require.NoError(t, err)
			require.Equal(t, tt.wantSQL, q)
			require.Equal(t, tt.wantArgs, args)
		})
	}
}

func Test_mapPgError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "exclusion", err: &pgconn.PgError{Code: pgerrcode.ExclusionViolation, ConstraintName: "reservation_no_overlap"}, want: errs.ErrRoomUnavailable},
		{name: "foreign key", err: &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, want: errs.ErrUnknownOwner},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.ErrorIs(t, mapPgError(tt.err), tt.want)
		})
	}

	other := errors.New("connection reset")
	require.Equal(t, other, mapPgError(other))
	unique := &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	require.Equal(t, error(unique), mapPgError(unique))
}
