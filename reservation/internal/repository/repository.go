package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Astemirdum/hotel-reservation/reservation/internal/errs"
	"github.com/Astemirdum/hotel-reservation/reservation/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Store is the persisted reservation set.
type Store interface {
	List(ctx context.Context) ([]model.Reservation, error)
	Get(ctx context.Context, id int) (model.Reservation, error)
	IsAvailable(ctx context.Context, q model.AvailabilityQuery) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
	// WithRoomLock runs fn while holding the write lock of one room, so an
	// availability check and the write that depends on it cannot interleave
	// with another writer of that room.
	WithRoomLock(ctx context.Context, roomNumber int, fn func(ctx context.Context, tx RoomTx) error) error
}

// RoomTx is the view of the store available under a room lock.
type RoomTx interface {
	Get(ctx context.Context, id int) (model.Reservation, error)
	IsAvailable(ctx context.Context, q model.AvailabilityQuery) (bool, error)
	Insert(ctx context.Context, rsv model.Reservation) (model.Reservation, error)
	Update(ctx context.Context, rsv model.Reservation) error
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

var _ Store = (*repository)(nil)

const (
	reservationTableName = `reservation`
	// first key of the two-key advisory lock, the room number is the second.
	roomLockNamespace int32 = 0x524f4f4d
)

var (
	qb      = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	columns = []string{"id", "customer_name", "start_date", "end_date", "room_number", "status", "owner_user_id"}
)

func (r *repository) List(ctx context.Context) ([]model.Reservation, error) {
	q, args, err := qb.Select(columns...).
		From(reservationTableName).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}
	items := make([]model.Reservation, 0)
	if err := r.db.SelectContext(ctx, &items, q, args...); err != nil {
		r.log.Error("List", zap.String("q", q), zap.Error(err))
		return nil, err
	}
	return items, nil
}

func (r *repository) Get(ctx context.Context, id int) (model.Reservation, error) {
	return get(ctx, r.db, id, false)
}

func (r *repository) IsAvailable(ctx context.Context, q model.AvailabilityQuery) (bool, error) {
	return isAvailable(ctx, r.db, q)
}

func (r *repository) Delete(ctx context.Context, id int) (bool, error) {
	q, args, err := qb.Delete(reservationTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		r.log.Error("Delete", zap.Int("id", id), zap.Error(err))
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repository) WithRoomLock(ctx context.Context, roomNumber int, fn func(ctx context.Context, tx RoomTx) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				r.log.Error("tx.Rollback", zap.Error(rbErr))
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `select pg_advisory_xact_lock($1, $2)`, roomLockNamespace, int32(roomNumber)); err != nil {
		return fmt.Errorf("lock room %d: %w", roomNumber, err)
	}
	if err = fn(ctx, &roomTx{tx: tx, log: r.log}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return mapPgError(fmt.Errorf("commit: %w", err))
	}
	return nil
}

type roomTx struct {
	tx  *sqlx.Tx
	log *zap.Logger
}

func (t *roomTx) Get(ctx context.Context, id int) (model.Reservation, error) {
	return get(ctx, t.tx, id, true)
}

func (t *roomTx) IsAvailable(ctx context.Context, q model.AvailabilityQuery) (bool, error) {
	return isAvailable(ctx, t.tx, q)
}

func (t *roomTx) Insert(ctx context.Context, rsv model.Reservation) (model.Reservation, error) {
	q, args, err := qb.Insert(reservationTableName).
		Columns(columns[1:]...).
		Values(rsv.CustomerName, rsv.StartDate, rsv.EndDate, rsv.RoomNumber, string(rsv.Status), rsv.OwnerUserID).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return model.Reservation{}, err
	}
	var res model.Reservation
	if err := t.tx.GetContext(ctx, &res, q, args...); err != nil {
		t.log.Error("Insert", zap.String("q", q), zap.Any("args", args), zap.Error(err))
		return model.Reservation{}, mapPgError(err)
	}
	return res, nil
}

// Update overwrites the mutable fields; id and owner_user_id are never written.
func (t *roomTx) Update(ctx context.Context, rsv model.Reservation) error {
	q, args, err := qb.Update(reservationTableName).
		SetMap(map[string]any{
			"customer_name": rsv.CustomerName,
			"start_date":    rsv.StartDate,
			"end_date":      rsv.EndDate,
			"room_number":   rsv.RoomNumber,
			"status":        string(rsv.Status),
		}).
		Where(sq.Eq{"id": rsv.ID}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := t.tx.ExecContext(ctx, q, args...)
	if err != nil {
		t.log.Error("Update", zap.String("q", q), zap.Any("args", args), zap.Error(err))
		return mapPgError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func get(ctx context.Context, db sqlx.QueryerContext, id int, forUpdate bool) (model.Reservation, error) {
	b := qb.Select(columns...).
		From(reservationTableName).
		Where(sq.Eq{"id": id})
	if forUpdate {
		b = b.Suffix("FOR UPDATE")
	}
	q, args, err := b.ToSql()
	if err != nil {
		return model.Reservation{}, err
	}
	var rsv model.Reservation
	if err := sqlx.GetContext(ctx, db, &rsv, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Reservation{}, errs.ErrNotFound
		}
		return model.Reservation{}, err
	}
	return rsv, nil
}

func isAvailable(ctx context.Context, db sqlx.QueryerContext, aq model.AvailabilityQuery) (bool, error) {
	q, args, err := availabilityQuery(aq).ToSql()
	if err != nil {
		return false, err
	}
	var taken bool
	if err := db.QueryRowxContext(ctx, q, args...).Scan(&taken); err != nil {
		return false, err
	}
	return !taken, nil
}

// availabilityQuery selects whether any non-cancelled reservation of the room
// overlaps [start, end): start_date < end and end_date > start.
func availabilityQuery(aq model.AvailabilityQuery) sq.SelectBuilder {
	b := qb.Select("1").
		From(reservationTableName).
		Where(sq.Eq{"room_number": aq.RoomNumber}).
		Where(sq.NotEq{"status": string(model.StatusCancelled)})
	if aq.ExcludeID != 0 {
		b = b.Where(sq.NotEq{"id": aq.ExcludeID})
	}
	return b.
		Where(sq.Lt{"start_date": aq.EndDate}).
		Where(sq.Gt{"end_date": aq.StartDate}).
		Prefix("SELECT EXISTS (").
		Suffix(")")
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.ExclusionViolation:
		return fmt.Errorf("%w: %s", errs.ErrRoomUnavailable, pgErr.ConstraintName)
	case pgerrcode.ForeignKeyViolation:
		return fmt.Errorf("%w: %s", errs.ErrUnknownOwner, pgErr.Detail)
	}
	return err
}
