package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is satisfied by *pgxpool.Pool and pgx.Tx, so integration tests can run
// every repository call inside a transaction that is rolled back afterwards.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

const bookingColumns = `ref_id, origin, destination, pieces, weight_kg, status, flight_ids, created_at, updated_at`

type PGBookingRepository struct {
	db db
}

func NewBookingRepository(db db) *PGBookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.StoreError("begin create booking", err)
	}
	defer tx.Rollback(ctx)

	flightIDs := b.FlightIDs
	if flightIDs == nil {
		flightIDs = []string{}
	}
	if _, err := tx.Exec(ctx, `INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		b.RefID, b.Origin, b.Destination, b.Pieces, b.WeightKg, b.Status, flightIDs, b.CreatedAt, b.UpdatedAt); err != nil {
		return domain.StoreError("insert booking", err)
	}

	for _, ev := range b.Timeline {
		if err := insertTimelineEvent(ctx, tx, b.RefID, ev); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.StoreError("commit create booking", err)
	}
	return nil
}

func (r *PGBookingRepository) GetByRefID(ctx context.Context, refID string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE ref_id = $1`, refID)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.StoreError("get booking", err)
	}

	timelines, err := r.loadTimelines(ctx, []string{refID})
	if err != nil {
		return nil, err
	}
	b.Timeline = timelines[refID]
	return &b, nil
}

func (r *PGBookingRepository) SaveTransition(ctx context.Context, refID string, status domain.BookingStatus, event domain.TimelineEvent, updatedAt time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.StoreError("begin transition", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE bookings SET status = $1, updated_at = $2 WHERE ref_id = $3`, status, updatedAt, refID)
	if err != nil {
		return domain.StoreError("update booking status", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if err := insertTimelineEvent(ctx, tx, refID, event); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.StoreError("commit transition", err)
	}
	return nil
}

func (r *PGBookingRepository) List(ctx context.Context, filter domain.BookingFilter, page domain.PaginationParams) ([]domain.Booking, error) {
	where, args := bookingWhere(filter)
	args = append(args, page.Limit, page.Offset())
	q := fmt.Sprintf(`SELECT %s FROM bookings%s ORDER BY created_at DESC, ref_id DESC LIMIT $%d OFFSET $%d`,
		bookingColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, domain.StoreError("list bookings", err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0, page.Limit)
	refIDs := make([]string, 0, page.Limit)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, domain.StoreError("scan booking", err)
		}
		bookings = append(bookings, b)
		refIDs = append(refIDs, b.RefID)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError("list bookings", err)
	}
	if len(bookings) == 0 {
		return bookings, nil
	}

	timelines, err := r.loadTimelines(ctx, refIDs)
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		bookings[i].Timeline = timelines[bookings[i].RefID]
	}
	return bookings, nil
}

func (r *PGBookingRepository) Count(ctx context.Context, filter domain.BookingFilter) (int64, error) {
	where, args := bookingWhere(filter)
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM bookings`+where, args...).Scan(&total); err != nil {
		return 0, domain.StoreError("count bookings", err)
	}
	return total, nil
}

func (r *PGBookingRepository) CountByStatus(ctx context.Context) (map[domain.BookingStatus]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT status, count(*) FROM bookings GROUP BY status`)
	if err != nil {
		return nil, domain.StoreError("count bookings by status", err)
	}
	defer rows.Close()

	counts := make(map[domain.BookingStatus]int64, len(domain.AllBookingStatuses))
	for rows.Next() {
		var (
			status domain.BookingStatus
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, domain.StoreError("scan status count", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError("count bookings by status", err)
	}
	return counts, nil
}

func (r *PGBookingRepository) Ping(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `SELECT 1`)
	return err
}

func (r *PGBookingRepository) loadTimelines(ctx context.Context, refIDs []string) (map[string][]domain.TimelineEvent, error) {
	rows, err := r.db.Query(ctx, `SELECT ref_id, event_type, location, flight_info, notes, occurred_at
		FROM booking_timeline WHERE ref_id = ANY($1) ORDER BY ref_id, id`, refIDs)
	if err != nil {
		return nil, domain.StoreError("load timeline", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.TimelineEvent, len(refIDs))
	for rows.Next() {
		var (
			refID string
			ev    domain.TimelineEvent
		)
		if err := rows.Scan(&refID, &ev.EventType, &ev.Location, &ev.FlightInfo, &ev.Notes, &ev.Timestamp); err != nil {
			return nil, domain.StoreError("scan timeline", err)
		}
		ev.Timestamp = ev.Timestamp.UTC()
		out[refID] = append(out[refID], ev)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError("load timeline", err)
	}
	return out, nil
}

func insertTimelineEvent(ctx context.Context, tx pgx.Tx, refID string, ev domain.TimelineEvent) error {
	if _, err := tx.Exec(ctx, `INSERT INTO booking_timeline (ref_id, event_type, location, flight_info, notes, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		refID, ev.EventType, ev.Location, ev.FlightInfo, ev.Notes, ev.Timestamp); err != nil {
		return domain.StoreError("insert timeline event", err)
	}
	return nil
}

func bookingWhere(filter domain.BookingFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Origin != "" {
		args = append(args, filter.Origin)
		conds = append(conds, fmt.Sprintf("origin = $%d", len(args)))
	}
	if filter.Destination != "" {
		args = append(args, filter.Destination)
		conds = append(conds, fmt.Sprintf("destination = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanBooking(row pgx.Row) (domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.RefID, &b.Origin, &b.Destination, &b.Pieces, &b.WeightKg, &b.Status, &b.FlightIDs, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return domain.Booking{}, err
	}
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
