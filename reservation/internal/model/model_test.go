package model_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/Astemirdum/hotel-reservation/reservation/internal/errs"
	"github.com/Astemirdum/hotel-reservation/reservation/internal/model"
	"github.com/stretchr/testify/require"
)

func TestReservation_Validate(t *testing.T) {
	t.Parallel()
	today := model.NewDate(2024, time.January, 10)
	valid := func() model.Reservation {
		return model.Reservation{
			CustomerName: "Ada Lovelace",
			StartDate:    today,
			EndDate:      today.AddDays(3),
			RoomNumber:   101,
			OwnerUserID:  "ada",
		}
	}

	tests := []struct {
		name   string
		modify func(r *model.Reservation)
		err    error
	}{
		{name: "starts today", modify: func(r *model.Reservation) {}},
		{name: "future range", modify: func(r *model.Reservation) {
			r.StartDate, r.EndDate = today.AddDays(30), today.AddDays(31)
		}},
		{name: "same day checkout", modify: func(r *model.Reservation) { r.EndDate = r.StartDate }},
		{name: "missing start", modify: func(r *model.Reservation) { r.StartDate = model.Date{} }, err: errs.ErrDatesRequired},
		{name: "missing end", modify: func(r *model.Reservation) { r.EndDate = model.Date{} }, err: errs.ErrDatesRequired},
		{name: "start in past", modify: func(r *model.Reservation) { r.StartDate = today.AddDays(-1) }, err: errs.ErrStartInPast},
		{name: "end before start", modify: func(r *model.Reservation) {
			r.StartDate, r.EndDate = today.AddDays(5), today.AddDays(4)
		}, err: errs.ErrEndBeforeStart},
		{name: "zero room", modify: func(r *model.Reservation) { r.RoomNumber = 0 }, err: errs.ErrInvalidRoom},
		{name: "negative room", modify: func(r *model.Reservation) { r.RoomNumber = -7 }, err: errs.ErrInvalidRoom},
		{name: "short name", modify: func(r *model.Reservation) { r.CustomerName = " Al " }, err: errs.ErrCustomerName},
		{name: "long name", modify: func(r *model.Reservation) { r.CustomerName = strings.Repeat("x", 101) }, err: errs.ErrCustomerName},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := valid()
			tt.modify(&r)
			err := r.Validate(today)
			if tt.err == nil {
				require.NoError(t, err)
				require.True(t, r.IsValid(today))
				return
			}
			require.ErrorIs(t, err, tt.err)
			require.False(t, r.IsValid(today))
		})
	}
}

func TestReservation_Blocks(t *testing.T) {
	t.Parallel()
	existing := model.Reservation{
		ID:         7,
		RoomNumber: 12,
		StartDate:  model.NewDate(2024, time.January, 10),
		EndDate:    model.NewDate(2024, time.January, 15),
		Status:     model.StatusConfirmed,
	}
	day := func(d int) model.Date { return model.NewDate(2024, time.January, d) }

	tests := []struct {
		name   string
		q      model.AvailabilityQuery
		status model.Status
		want   bool
	}{
		{name: "fully inside", q: model.AvailabilityQuery{RoomNumber: 12, StartDate: day(12), EndDate: day(14)}, want: true},
		{name: "touches checkout", q: model.AvailabilityQuery{RoomNumber: 12, StartDate: day(15), EndDate: day(18)}, want: false},
		{name: "touches check-in", q: model.AvailabilityQuery{RoomNumber: 12, StartDate: day(8), EndDate: day(10)}, want: false},
		{name: "spans existing", q: model.AvailabilityQuery{RoomNumber: 12, StartDate: day(5), EndDate: day(20)}, want: true},
		{name: "overlaps start", q: model.AvailabilityQuery{RoomNumber: 12, StartDate: day(8), EndDate: day(11)}, want: true},
		{name: "overlaps end", q: model.AvailabilityQuery{RoomNumber: 12, StartDate: day(14), EndDate: day(16)}, want: true},
		{name: "other room", q: model.AvailabilityQuery{RoomNumber: 13, StartDate: day(12), EndDate: day(14)}, want: false},
		{name: "self excluded", q: model.AvailabilityQuery{RoomNumber: 12, StartDate: day(10), EndDate: day(15), ExcludeID: 7}, want: false},
		{name: "other excluded", q: model.AvailabilityQuery{RoomNumber: 12, StartDate: day(10), EndDate: day(15), ExcludeID: 8}, want: true},
		{name: "cancelled never blocks", q: model.AvailabilityQuery{RoomNumber: 12, StartDate: day(5), EndDate: day(20)}, status: model.StatusCancelled, want: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := existing
			if tt.status != "" {
				r.Status = tt.status
			}
			require.Equal(t, tt.want, r.Blocks(tt.q))
		})
	}
}

func TestReservation_Nights(t *testing.T) {
	t.Parallel()
	r := model.Reservation{
		StartDate: model.NewDate(2024, time.March, 30),
		EndDate:   model.NewDate(2024, time.April, 2),
	}
	require.Equal(t, 3, r.Nights())
}

func TestDate(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC-5", -5*60*60)
	late := time.Date(2024, time.January, 10, 23, 30, 0, 0, loc)
	require.Equal(t, model.NewDate(2024, time.January, 10), model.DateOf(late))

	d, err := model.ParseDate("2024-02-29")
	require.NoError(t, err)
	require.Equal(t, model.NewDate(2024, time.February, 29), d)

	_, err = model.ParseDate("2024-02-30")
	require.Error(t, err)

	var payload struct {
		Start model.Date `json:"start"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"start":"2024-01-10"}`), &payload))
	require.Equal(t, model.NewDate(2024, time.January, 10), payload.Start)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	require.JSONEq(t, `{"start":"2024-01-10"}`, string(out))

	var scanned model.Date
	require.NoError(t, scanned.Scan(time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, d.AddDays(-50), scanned)
}

func TestStatus_Valid(t *testing.T) {
	t.Parallel()
	require.True(t, model.StatusPending.Valid())
	require.True(t, model.StatusCancelled.Valid())
	require.False(t, model.Status("ARCHIVED").Valid())
}
