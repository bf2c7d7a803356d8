package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Astemirdum/hotel-reservation/reservation/internal/errs"
	"github.com/Astemirdum/hotel-reservation/reservation/internal/model"
	"github.com/Astemirdum/hotel-reservation/reservation/internal/repository"
)

// Store keeps reservations in process memory. Reads share mu; writers of one
// room are serialized by that room's mutex for the whole WithRoomLock callback.
type Store struct {
	mu     sync.RWMutex
	items  map[int]model.Reservation
	nextID int

	roomsMu sync.Mutex
	rooms   map[int]*sync.Mutex

	// owners, when set, restricts OwnerUserID to known users.
	owners map[string]struct{}
}

func NewStore() *Store {
	return &Store{
		items:  make(map[int]model.Reservation),
		nextID: 1,
		rooms:  make(map[int]*sync.Mutex),
	}
}

// WithOwners emulates the users foreign key of the relational store.
func (s *Store) WithOwners(ids ...string) *Store {
	s.owners = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.owners[id] = struct{}{}
	}
	return s
}

var _ repository.Store = (*Store)(nil)

func (s *Store) List(ctx context.Context) ([]model.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Reservation, 0, len(s.items))
	for _, rsv := range s.items {
		out = append(out, rsv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) Get(ctx context.Context, id int) (model.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return model.Reservation{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rsv, ok := s.items[id]
	if !ok {
		return model.Reservation{}, errs.ErrNotFound
	}
	return rsv, nil
}

func (s *Store) IsAvailable(ctx context.Context, q model.AvailabilityQuery) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rsv := range s.items {
		if rsv.Blocks(q) {
			return false, nil
		}
	}
	return true, nil
}

func (s *Store) Delete(ctx context.Context, id int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

func (s *Store) WithRoomLock(ctx context.Context, roomNumber int, fn func(ctx context.Context, tx repository.RoomTx) error) error {
	lock := s.roomLock(roomNumber)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, &roomTx{store: s})
}

func (s *Store) roomLock(roomNumber int) *sync.Mutex {
	s.roomsMu.Lock()
	defer s.roomsMu.Unlock()

	lock, ok := s.rooms[roomNumber]
	if !ok {
		lock = &sync.Mutex{}
		s.rooms[roomNumber] = lock
	}
	return lock
}

type roomTx struct {
	store *Store
}

func (t *roomTx) Get(ctx context.Context, id int) (model.Reservation, error) {
	return t.store.Get(ctx, id)
}

func (t *roomTx) IsAvailable(ctx context.Context, q model.AvailabilityQuery) (bool, error) {
	return t.store.IsAvailable(ctx, q)
}

func (t *roomTx) Insert(ctx context.Context, rsv model.Reservation) (model.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return model.Reservation{}, err
	}
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.owners != nil {
		if _, ok := s.owners[rsv.OwnerUserID]; !ok {
			return model.Reservation{}, errs.ErrUnknownOwner
		}
	}
	rsv.ID = s.nextID
	s.nextID++
	s.items[rsv.ID] = rsv
	return rsv, nil
}

func (t *roomTx) Update(ctx context.Context, rsv model.Reservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.items[rsv.ID]
	if !ok {
		return errs.ErrNotFound
	}
	current.CustomerName = rsv.CustomerName
	current.StartDate = rsv.StartDate
	current.EndDate = rsv.EndDate
	current.RoomNumber = rsv.RoomNumber
	current.Status = rsv.Status
	s.items[rsv.ID] = current
	return nil
}
