package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/jackc/pgx/v5"
)

const flightColumns = `flight_id, flight_number, airline_name, origin, destination, departure_date_time, arrival_date_time, aircraft_type, capacity, available_space, status`

type PGFlightRepository struct {
	db db
}

func NewFlightRepository(db db) *PGFlightRepository {
	return &PGFlightRepository{db: db}
}

func (r *PGFlightRepository) GetByID(ctx context.Context, flightID string) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE flight_id = $1`, flightID)
	f, err := scanFlight(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.StoreError("get flight", err)
	}
	return &f, nil
}

func (r *PGFlightRepository) CountByIDs(ctx context.Context, flightIDs []string) (int, error) {
	if len(flightIDs) == 0 {
		return 0, nil
	}
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM flights WHERE flight_id = ANY($1)`, flightIDs).Scan(&n); err != nil {
		return 0, domain.StoreError("count flights", err)
	}
	return n, nil
}

func (r *PGFlightRepository) List(ctx context.Context, page domain.PaginationParams) ([]domain.Flight, error) {
	return r.query(ctx, "list flights",
		`SELECT `+flightColumns+` FROM flights ORDER BY departure_date_time, flight_id LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset())
}

func (r *PGFlightRepository) FindDirect(ctx context.Context, origin, destination string, from, to time.Time, limit int) ([]domain.Flight, error) {
	return r.query(ctx, "find direct flights",
		`SELECT `+flightColumns+` FROM flights
		WHERE origin = $1 AND destination = $2 AND departure_date_time >= $3 AND departure_date_time < $4
		ORDER BY departure_date_time, flight_id LIMIT $5`,
		origin, destination, from, to, limit)
}

func (r *PGFlightRepository) FindDepartingFrom(ctx context.Context, origin, excludeDestination string, from, to time.Time, limit int) ([]domain.Flight, error) {
	return r.query(ctx, "find first legs",
		`SELECT `+flightColumns+` FROM flights
		WHERE origin = $1 AND destination <> $2 AND departure_date_time >= $3 AND departure_date_time < $4
		ORDER BY departure_date_time, flight_id LIMIT $5`,
		origin, excludeDestination, from, to, limit)
}

func (r *PGFlightRepository) FindArrivingAt(ctx context.Context, destination string, from, to time.Time, limit int) ([]domain.Flight, error) {
	return r.query(ctx, "find second legs",
		`SELECT `+flightColumns+` FROM flights
		WHERE destination = $1 AND departure_date_time >= $2 AND departure_date_time < $3
		ORDER BY departure_date_time, flight_id LIMIT $4`,
		destination, from, to, limit)
}

func (r *PGFlightRepository) Airports(ctx context.Context) ([]domain.Airport, error) {
	rows, err := r.db.Query(ctx, `SELECT origin FROM flights UNION SELECT destination FROM flights ORDER BY 1`)
	if err != nil {
		return nil, domain.StoreError("list airports", err)
	}
	defer rows.Close()

	airports := make([]domain.Airport, 0)
	for rows.Next() {
		var a domain.Airport
		if err := rows.Scan(&a.Code); err != nil {
			return nil, domain.StoreError("scan airport", err)
		}
		airports = append(airports, a)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError("list airports", err)
	}
	return airports, nil
}

func (r *PGFlightRepository) Upsert(ctx context.Context, flights []domain.Flight) (int, error) {
	if len(flights) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, f := range flights {
		batch.Queue(`INSERT INTO flights (`+flightColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (flight_id) DO UPDATE SET
				flight_number = EXCLUDED.flight_number,
				airline_name = EXCLUDED.airline_name,
				origin = EXCLUDED.origin,
				destination = EXCLUDED.destination,
				departure_date_time = EXCLUDED.departure_date_time,
				arrival_date_time = EXCLUDED.arrival_date_time,
				aircraft_type = EXCLUDED.aircraft_type,
				capacity = EXCLUDED.capacity,
				available_space = EXCLUDED.available_space,
				status = EXCLUDED.status,
				updated_at = now()`,
			f.FlightID, f.FlightNumber, f.AirlineName, f.Origin, f.Destination,
			f.DepartureDateTime, f.ArrivalDateTime, f.AircraftType, f.Capacity, f.AvailableSpace, f.Status)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	written := 0
	for range flights {
		if _, err := results.Exec(); err != nil {
			return written, domain.StoreError("upsert flight", err)
		}
		written++
	}
	return written, nil
}

func (r *PGFlightRepository) query(ctx context.Context, op, sql string, args ...any) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, domain.StoreError(op, err)
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, domain.StoreError(op, err)
		}
		flights = append(flights, f)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError(op, err)
	}
	return flights, nil
}

func scanFlight(row pgx.Row) (domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.FlightID, &f.FlightNumber, &f.AirlineName, &f.Origin, &f.Destination,
		&f.DepartureDateTime, &f.ArrivalDateTime, &f.AircraftType, &f.Capacity, &f.AvailableSpace, &f.Status); err != nil {
		return domain.Flight{}, err
	}
	f.DepartureDateTime = f.DepartureDateTime.UTC()
	f.ArrivalDateTime = f.ArrivalDateTime.UTC()
	return f, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
