package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightdashboard/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("flight not found")

// Querier is the subset of a Postgres pool used by the repository.
// It is implemented by *pgxpool.Pool and pgxmock.PgxPoolIface.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Insert(ctx context.Context, flight *domain.Flight) error
	Update(ctx context.Context, flight domain.Flight) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type PGFlightRepository struct {
	db Querier
}

func NewFlightRepository(db Querier) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, flight_number, departure_airport, arrival_airport, departure_time, arrival_time`

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query flights: %w", err)
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, fmt.Errorf("scan flight: %w", err)
		}
		flights = append(flights, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flights: %w", err)
	}
	return flights, nil
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
	f, err := scanFlight(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get flight %d: %w", id, err)
	}
	return &f, nil
}

// Insert stores flight and sets its ID to the one assigned by the database.
func (r *PGFlightRepository) Insert(ctx context.Context, flight *domain.Flight) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO flights (flight_number, departure_airport, arrival_airport, departure_time, arrival_time) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		flight.FlightNumber, flight.DepartureAirport, flight.ArrivalAirport, flight.DepartureTime, flight.ArrivalTime,
	).Scan(&flight.ID)
	if err != nil {
		return fmt.Errorf("insert flight: %w", err)
	}
	return nil
}

// Update replaces every column of the row with flight.ID. It reports false when no such row exists.
func (r *PGFlightRepository) Update(ctx context.Context, flight domain.Flight) (bool, error) {
	res, err := r.db.Exec(ctx,
		`UPDATE flights SET flight_number=$2, departure_airport=$3, arrival_airport=$4, departure_time=$5, arrival_time=$6 WHERE id=$1`,
		flight.ID, flight.FlightNumber, flight.DepartureAirport, flight.ArrivalAirport, flight.DepartureTime, flight.ArrivalTime,
	)
	if err != nil {
		return false, fmt.Errorf("update flight %d: %w", flight.ID, err)
	}
	return res.RowsAffected() > 0, nil
}

func (r *PGFlightRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.Exec(ctx, `DELETE FROM flights WHERE id=$1`, id)
	if err != nil {
		return false, fmt.Errorf("delete flight %d: %w", id, err)
	}
	return res.RowsAffected() > 0, nil
}

func scanFlight(row pgx.Row) (domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.FlightNumber, &f.DepartureAirport, &f.ArrivalAirport, &f.DepartureTime, &f.ArrivalTime); err != nil {
		return domain.Flight{}, err
	}
	return f.UTC(), nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
