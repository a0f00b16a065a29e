package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hongminglow/airfreight/internal/geo"
	"github.com/hongminglow/airfreight/internal/models"
	"github.com/hongminglow/airfreight/internal/storage"
)

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// queries implements storage.Tx over either the database or an open transaction.
type queries struct {
	db dbtx
}

var _ storage.Tx = (*queries)(nil)

const (
	userColumns       = `id, name, funds, created_at`
	planeModelColumns = `id, name, cruise_speed, cost, cargo_capacity, fuel_burn, fuel_capacity, passenger_seats`
	airportColumns    = `id, name, latitude, longitude, elevation_m, runway_length_m, runway_width_m, runway_lighted`
	planeColumns      = `tail_number, owner_id, model_id, fuel, condition, upgrade_level, location_kind, airport_id, origin_id, destination_id, departed_at`
	packageColumns    = `id, name, type, count, unit_mass, goal, payout, expires_at, location_kind, airport_id, tail_number`
)

func nanos(t time.Time) int64 { return t.UTC().UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

func noRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}

func (q *queries) User(ctx context.Context, id string) (models.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	var u models.User
	var created int64
	if err := row.Scan(&u.ID, &u.Name, &u.Funds, &created); err != nil {
		return models.User{}, noRows(err)
	}
	u.CreatedAt = fromNanos(created)
	return u, nil
}

func scanPlaneModel(row scanner) (models.PlaneModel, error) {
	var m models.PlaneModel
	err := row.Scan(&m.ID, &m.Name, &m.CruiseSpeed, &m.Cost, &m.CargoCapacity, &m.FuelBurn, &m.FuelCapacity, &m.PassengerSeats)
	return m, err
}

func (q *queries) PlaneModel(ctx context.Context, id string) (models.PlaneModel, error) {
	m, err := scanPlaneModel(q.db.QueryRowContext(ctx, `SELECT `+planeModelColumns+` FROM plane_models WHERE id = ?`, id))
	if err != nil {
		return models.PlaneModel{}, noRows(err)
	}
	return m, nil
}

func (q *queries) PlaneModels(ctx context.Context, page storage.Page) ([]models.PlaneModel, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+planeModelColumns+` FROM plane_models ORDER BY id LIMIT ? OFFSET ?`, page.Size(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list plane models: %w", err)
	}
	return collect(rows, scanPlaneModel)
}

func scanAirport(row scanner) (models.Airport, error) {
	var a models.Airport
	err := row.Scan(&a.ID, &a.Name, &a.Location.Lat, &a.Location.Lon, &a.ElevationM, &a.Runway.LengthM, &a.Runway.WidthM, &a.Runway.Lighted)
	return a, err
}

func (q *queries) Airport(ctx context.Context, id string) (models.Airport, error) {
	a, err := scanAirport(q.db.QueryRowContext(ctx, `SELECT `+airportColumns+` FROM airports WHERE id = ?`, id))
	if err != nil {
		return models.Airport{}, noRows(err)
	}
	return a, nil
}

func (q *queries) Airports(ctx context.Context, page storage.Page) ([]models.Airport, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+airportColumns+` FROM airports ORDER BY id LIMIT ? OFFSET ?`, page.Size(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list airports: %w", err)
	}
	return collect(rows, scanAirport)
}

func (q *queries) AllAirports(ctx context.Context) ([]models.Airport, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+airportColumns+` FROM airports ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list all airports: %w", err)
	}
	return collect(rows, scanAirport)
}

func (q *queries) AirportsInBox(ctx context.Context, box geo.Box) ([]models.Airport, error) {
	query := `SELECT ` + airportColumns + ` FROM airports
		WHERE latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?
		ORDER BY id`
	if box.Wraps() {
		query = `SELECT ` + airportColumns + ` FROM airports
		WHERE latitude BETWEEN ? AND ? AND (longitude >= ? OR longitude <= ?)
		ORDER BY id`
	}
	rows, err := q.db.QueryContext(ctx, query, box.MinLat, box.MaxLat, box.MinLon, box.MaxLon)
	if err != nil {
		return nil, fmt.Errorf("airports in box: %w", err)
	}
	return collect(rows, scanAirport)
}

func scanPlane(row scanner) (models.Plane, error) {
	var p models.Plane
	var loc storage.PlaneLocation
	var departed sql.NullInt64
	if err := row.Scan(&p.TailNumber, &p.OwnerID, &p.ModelID, &p.Fuel, &p.Condition, &p.UpgradeLevel,
		&loc.Kind, &loc.AirportID, &loc.OriginID, &loc.DestinationID, &departed); err != nil {
		return models.Plane{}, err
	}
	if departed.Valid {
		t := fromNanos(departed.Int64)
		loc.DepartedAt = &t
	}
	w, err := loc.Decode()
	if err != nil {
		return models.Plane{}, fmt.Errorf("plane %s: %w", p.TailNumber, err)
	}
	p.Whereabouts = w
	return p, nil
}

func (q *queries) Plane(ctx context.Context, tailNumber string) (models.Plane, error) {
	p, err := scanPlane(q.db.QueryRowContext(ctx, `SELECT `+planeColumns+` FROM planes WHERE tail_number = ?`, tailNumber))
	if err != nil {
		return models.Plane{}, noRows(err)
	}
	return p, nil
}

func (q *queries) Planes(ctx context.Context, page storage.Page) ([]models.Plane, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+planeColumns+` FROM planes ORDER BY tail_number LIMIT ? OFFSET ?`, page.Size(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list planes: %w", err)
	}
	return collect(rows, scanPlane)
}

func (q *queries) PlanesEnRoute(ctx context.Context) ([]models.Plane, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+planeColumns+` FROM planes WHERE location_kind = ? ORDER BY tail_number`, storage.KindEnRoute)
	if err != nil {
		return nil, fmt.Errorf("list planes en route: %w", err)
	}
	return collect(rows, scanPlane)
}

func scanPackage(row scanner) (models.Package, error) {
	var p models.Package
	var loc storage.PackageLocation
	var expires int64
	if err := row.Scan(&p.ID, &p.Name, &p.Type, &p.Count, &p.UnitMass, &p.Goal, &p.Payout, &expires,
		&loc.Kind, &loc.AirportID, &loc.TailNumber); err != nil {
		return models.Package{}, err
	}
	p.Expiration = fromNanos(expires)
	w, err := loc.Decode()
	if err != nil {
		return models.Package{}, fmt.Errorf("package %s: %w", p.ID, err)
	}
	p.Whereabouts = w
	return p, nil
}

func (q *queries) Package(ctx context.Context, id string) (models.Package, error) {
	p, err := scanPackage(q.db.QueryRowContext(ctx, `SELECT `+packageColumns+` FROM packages WHERE id = ?`, id))
	if err != nil {
		return models.Package{}, noRows(err)
	}
	return p, nil
}

func (q *queries) Packages(ctx context.Context, page storage.Page) ([]models.Package, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+packageColumns+` FROM packages ORDER BY id LIMIT ? OFFSET ?`, page.Size(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	return collect(rows, scanPackage)
}

func (q *queries) PackagesAtAirport(ctx context.Context, airportID string) ([]models.Package, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+packageColumns+` FROM packages WHERE location_kind = ? AND airport_id = ? ORDER BY id`, storage.KindAirport, airportID)
	if err != nil {
		return nil, fmt.Errorf("list packages at airport: %w", err)
	}
	return collect(rows, scanPackage)
}

func (q *queries) PackagesOnboard(ctx context.Context, tailNumber string) ([]models.Package, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+packageColumns+` FROM packages WHERE location_kind = ? AND tail_number = ? ORDER BY id`, storage.KindPlane, tailNumber)
	if err != nil {
		return nil, fmt.Errorf("list packages onboard: %w", err)
	}
	return collect(rows, scanPackage)
}

func (q *queries) LastTick(ctx context.Context) (time.Time, bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT last_tick FROM sim_state WHERE id = 1`).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read last tick: %w", err)
	}
	return fromNanos(n), true, nil
}

func collect[T any](rows *sql.Rows, scan func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
