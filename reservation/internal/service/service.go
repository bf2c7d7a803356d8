package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/Astemirdum/hotel-reservation/reservation/internal/errs"
	"github.com/Astemirdum/hotel-reservation/reservation/internal/metrics"
	"github.com/Astemirdum/hotel-reservation/reservation/internal/model"
	"github.com/Astemirdum/hotel-reservation/reservation/internal/repository"
	"go.uber.org/zap"
)

// Publisher delivers reservation events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, key string, v any) error
}

// Recorder counts operation outcomes.
type Recorder interface {
	Observe(op, result string)
}

type Service struct {
	log       *zap.Logger
	repo      repository.Store
	now       func() time.Time
	publisher Publisher
	metrics   Recorder
}

type Option func(s *Service)

// WithClock sets the time source used for "today". The calendar day is taken
// in the location of the returned time.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithMetrics(r Recorder) Option {
	return func(s *Service) {
		s.metrics = r
	}
}

func NewService(repo repository.Store, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		log:       log.Named("service"),
		repo:      repo,
		now:       time.Now,
		publisher: nopPublisher{},
		metrics:   nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

func (s *Service) today() model.Date {
	return model.DateOf(s.now())
}

// ListAll returns every reservation. Filtering by owner is up to the caller.
func (s *Service) ListAll(ctx context.Context) ([]model.Reservation, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int) (model.Reservation, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) IsRoomAvailable(ctx context.Context, q model.AvailabilityQuery) (bool, error) {
	q.StartDate, q.EndDate = model.DateOf(q.StartDate.Time), model.DateOf(q.EndDate.Time)
	return s.repo.IsAvailable(ctx, q)
}

// Create stores rsv as a new PENDING reservation. A reservation that breaks a
// field rule or collides with another stay yields false and nothing is
// written. On success rsv receives its id and status.
func (s *Service) Create(ctx context.Context, rsv *model.Reservation) (bool, error) {
	candidate := *rsv
	candidate.ID = 0
	candidate.Status = model.StatusPending

	if err := candidate.Validate(s.today()); err != nil {
		s.reject(opCreate, candidate, err)
		return false, nil
	}

	var created model.Reservation
	err := s.repo.WithRoomLock(ctx, candidate.RoomNumber, func(ctx context.Context, tx repository.RoomTx) error {
		free, err := tx.IsAvailable(ctx, queryFor(candidate, 0))
		if err != nil {
			return err
		}
		if !free {
			return errs.ErrRoomUnavailable
		}
		created, err = tx.Insert(ctx, candidate)
		return err
	})
	if err != nil {
		if errors.Is(err, errs.ErrRoomUnavailable) {
			s.reject(opCreate, candidate, err)
			return false, nil
		}
		s.metrics.Observe(opCreate, metrics.ResultError)
		return false, err
	}

	*rsv = created
	s.metrics.Observe(opCreate, metrics.ResultOK)
	s.publish(ctx, model.EventCreated, created)
	return true, nil
}

// Update overwrites the mutable fields of an existing reservation. Id and
// owner always come from the stored record. errs.ErrNotFound is returned for
// an unknown id; false means the new values were rejected and the stored
// reservation is unchanged.
func (s *Service) Update(ctx context.Context, rsv *model.Reservation) (bool, error) {
	existing, err := s.repo.Get(ctx, rsv.ID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			s.metrics.Observe(opUpdate, metrics.ResultNotFound)
		}
		return false, err
	}

	candidate := *rsv
	candidate.OwnerUserID = existing.OwnerUserID
	if err := candidate.Validate(s.today()); err != nil {
		s.reject(opUpdate, candidate, err)
		return false, nil
	}

	var updated model.Reservation
	err = s.repo.WithRoomLock(ctx, candidate.RoomNumber, func(ctx context.Context, tx repository.RoomTx) error {
		current, err := tx.Get(ctx, candidate.ID)
		if err != nil {
			return err
		}
		candidate.OwnerUserID = current.OwnerUserID

		free, err := tx.IsAvailable(ctx, queryFor(candidate, candidate.ID))
		if err != nil {
			return err
		}
		if !free {
			return errs.ErrRoomUnavailable
		}
		if err := tx.Update(ctx, candidate); err != nil {
			return err
		}
		updated = candidate
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, errs.ErrRoomUnavailable):
		s.reject(opUpdate, candidate, err)
		return false, nil
	case errors.Is(err, errs.ErrNotFound):
		s.metrics.Observe(opUpdate, metrics.ResultNotFound)
		return false, err
	default:
		s.metrics.Observe(opUpdate, metrics.ResultError)
		return false, err
	}

	*rsv = updated
	s.metrics.Observe(opUpdate, metrics.ResultOK)
	s.publish(ctx, model.EventUpdated, updated)
	return true, nil
}

// Delete removes the reservation; an unknown id is reported as false.
func (s *Service) Delete(ctx context.Context, id int) (bool, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			s.metrics.Observe(opDelete, metrics.ResultNotFound)
			return false, nil
		}
		return false, err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.metrics.Observe(opDelete, metrics.ResultError)
		return false, err
	}
	if !deleted {
		s.metrics.Observe(opDelete, metrics.ResultNotFound)
		return false, nil
	}
	s.metrics.Observe(opDelete, metrics.ResultOK)
	s.publish(ctx, model.EventDeleted, existing)
	return true, nil
}

func queryFor(rsv model.Reservation, excludeID int) model.AvailabilityQuery {
	return model.AvailabilityQuery{
		RoomNumber: rsv.RoomNumber,
		StartDate:  rsv.StartDate,
		EndDate:    rsv.EndDate,
		ExcludeID:  excludeID,
	}
}

func (s *Service) reject(op string, rsv model.Reservation, reason error) {
	s.metrics.Observe(op, metrics.ResultRejected)
	s.log.Info("reservation rejected",
		zap.String("op", op),
		zap.Int("id", rsv.ID),
		zap.Int("room", rsv.RoomNumber),
		zap.Stringer("start", rsv.StartDate),
		zap.Stringer("end", rsv.EndDate),
		zap.String("reason", reason.Error()),
	)
}

// publish is best effort: the write is already committed.
func (s *Service) publish(ctx context.Context, typ model.EventType, rsv model.Reservation) {
	event := model.NewEvent(typ, rsv, s.now())
	if err := s.publisher.Publish(ctx, strconv.Itoa(rsv.RoomNumber), event); err != nil {
		s.log.Warn("publish event", zap.String("type", string(typ)), zap.Int("id", rsv.ID), zap.Error(err))
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, any) error { return nil }

type nopRecorder struct{}

func (nopRecorder) Observe(string, string) {}
