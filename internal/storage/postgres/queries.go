package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hongminglow/airfreight/internal/geo"
	"github.com/hongminglow/airfreight/internal/models"
	"github.com/hongminglow/airfreight/internal/storage"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// queries implements storage.Tx. Inside a transaction single-row reads take row locks.
type queries struct {
	db      dbtx
	locking bool
}

var _ storage.Tx = (*queries)(nil)

const (
	userColumns       = `id, name, funds, created_at`
	planeModelColumns = `id, name, cruise_speed, cost, cargo_capacity, fuel_burn, fuel_capacity, passenger_seats`
	airportColumns    = `id, name, latitude, longitude, elevation_m, runway_length_m, runway_width_m, runway_lighted`
	planeColumns      = `tail_number, owner_id, model_id, fuel, condition, upgrade_level, location_kind, airport_id, origin_id, destination_id, departed_at`
	packageColumns    = `id, name, type, count, unit_mass, goal, payout, expires_at, location_kind, airport_id, tail_number`
)

func (q *queries) forUpdate() string {
	if q.locking {
		return ` FOR UPDATE`
	}
	return ""
}

func noRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}

func (q *queries) User(ctx context.Context, id string) (models.User, error) {
	var u models.User
	row := q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`+q.forUpdate(), id)
	if err := row.Scan(&u.ID, &u.Name, &u.Funds, &u.CreatedAt); err != nil {
		return models.User{}, noRows(err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

func scanPlaneModel(row pgx.Row) (models.PlaneModel, error) {
	var m models.PlaneModel
	err := row.Scan(&m.ID, &m.Name, &m.CruiseSpeed, &m.Cost, &m.CargoCapacity, &m.FuelBurn, &m.FuelCapacity, &m.PassengerSeats)
	return m, err
}

func (q *queries) PlaneModel(ctx context.Context, id string) (models.PlaneModel, error) {
	m, err := scanPlaneModel(q.db.QueryRow(ctx, `SELECT `+planeModelColumns+` FROM plane_models WHERE id = $1`, id))
	if err != nil {
		return models.PlaneModel{}, noRows(err)
	}
	return m, nil
}

func (q *queries) PlaneModels(ctx context.Context, page storage.Page) ([]models.PlaneModel, error) {
	rows, err := q.db.Query(ctx, `SELECT `+planeModelColumns+` FROM plane_models ORDER BY id LIMIT $1 OFFSET $2`, page.Size(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list plane models: %w", err)
	}
	return collect(rows, scanPlaneModel)
}

func scanAirport(row pgx.Row) (models.Airport, error) {
	var a models.Airport
	err := row.Scan(&a.ID, &a.Name, &a.Location.Lat, &a.Location.Lon, &a.ElevationM, &a.Runway.LengthM, &a.Runway.WidthM, &a.Runway.Lighted)
	return a, err
}

func (q *queries) Airport(ctx context.Context, id string) (models.Airport, error) {
	a, err := scanAirport(q.db.QueryRow(ctx, `SELECT `+airportColumns+` FROM airports WHERE id = $1`, id))
	if err != nil {
		return models.Airport{}, noRows(err)
	}
	return a, nil
}

func (q *queries) Airports(ctx context.Context, page storage.Page) ([]models.Airport, error) {
	rows, err := q.db.Query(ctx, `SELECT `+airportColumns+` FROM airports ORDER BY id LIMIT $1 OFFSET $2`, page.Size(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list airports: %w", err)
	}
	return collect(rows, scanAirport)
}

func (q *queries) AllAirports(ctx context.Context) ([]models.Airport, error) {
	rows, err := q.db.Query(ctx, `SELECT `+airportColumns+` FROM airports ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list all airports: %w", err)
	}
	return collect(rows, scanAirport)
}

func (q *queries) AirportsInBox(ctx context.Context, box geo.Box) ([]models.Airport, error) {
	lon := `longitude BETWEEN $3 AND $4`
	if box.Wraps() {
		lon = `(longitude >= $3 OR longitude <= $4)`
	}
	rows, err := q.db.Query(ctx, `SELECT `+airportColumns+` FROM airports
		WHERE latitude BETWEEN $1 AND $2 AND `+lon+`
		ORDER BY id`, box.MinLat, box.MaxLat, box.MinLon, box.MaxLon)
	if err != nil {
		return nil, fmt.Errorf("airports in box: %w", err)
	}
	return collect(rows, scanAirport)
}

func scanPlane(row pgx.Row) (models.Plane, error) {
	var p models.Plane
	var loc storage.PlaneLocation
	if err := row.Scan(&p.TailNumber, &p.OwnerID, &p.ModelID, &p.Fuel, &p.Condition, &p.UpgradeLevel,
		&loc.Kind, &loc.AirportID, &loc.OriginID, &loc.DestinationID, &loc.DepartedAt); err != nil {
		return models.Plane{}, err
	}
	w, err := loc.Decode()
	if err != nil {
		return models.Plane{}, fmt.Errorf("plane %s: %w", p.TailNumber, err)
	}
	p.Whereabouts = w
	return p, nil
}

func (q *queries) Plane(ctx context.Context, tailNumber string) (models.Plane, error) {
	p, err := scanPlane(q.db.QueryRow(ctx, `SELECT `+planeColumns+` FROM planes WHERE tail_number = $1`+q.forUpdate(), tailNumber))
	if err != nil {
		return models.Plane{}, noRows(err)
	}
	return p, nil
}

func (q *queries) Planes(ctx context.Context, page storage.Page) ([]models.Plane, error) {
	rows, err := q.db.Query(ctx, `SELECT `+planeColumns+` FROM planes ORDER BY tail_number LIMIT $1 OFFSET $2`, page.Size(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list planes: %w", err)
	}
	return collect(rows, scanPlane)
}

func (q *queries) PlanesEnRoute(ctx context.Context) ([]models.Plane, error) {
	rows, err := q.db.Query(ctx, `SELECT `+planeColumns+` FROM planes WHERE location_kind = $1 ORDER BY tail_number`, storage.KindEnRoute)
	if err != nil {
		return nil, fmt.Errorf("list planes en route: %w", err)
	}
	return collect(rows, scanPlane)
}

func scanPackage(row pgx.Row) (models.Package, error) {
	var p models.Package
	var typ string
	var loc storage.PackageLocation
	if err := row.Scan(&p.ID, &p.Name, &typ, &p.Count, &p.UnitMass, &p.Goal, &p.Payout, &p.Expiration,
		&loc.Kind, &loc.AirportID, &loc.TailNumber); err != nil {
		return models.Package{}, err
	}
	p.Type = models.PackageType(typ)
	p.Expiration = p.Expiration.UTC()
	w, err := loc.Decode()
	if err != nil {
		return models.Package{}, fmt.Errorf("package %s: %w", p.ID, err)
	}
	p.Whereabouts = w
	return p, nil
}

func (q *queries) Package(ctx context.Context, id string) (models.Package, error) {
	p, err := scanPackage(q.db.QueryRow(ctx, `SELECT `+packageColumns+` FROM packages WHERE id = $1`+q.forUpdate(), id))
	if err != nil {
		return models.Package{}, noRows(err)
	}
	return p, nil
}

func (q *queries) Packages(ctx context.Context, page storage.Page) ([]models.Package, error) {
	rows, err := q.db.Query(ctx, `SELECT `+packageColumns+` FROM packages ORDER BY id LIMIT $1 OFFSET $2`, page.Size(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	return collect(rows, scanPackage)
}

func (q *queries) PackagesAtAirport(ctx context.Context, airportID string) ([]models.Package, error) {
	rows, err := q.db.Query(ctx, `SELECT `+packageColumns+` FROM packages WHERE location_kind = $1 AND airport_id = $2 ORDER BY id`, storage.KindAirport, airportID)
	if err != nil {
		return nil, fmt.Errorf("list packages at airport: %w", err)
	}
	return collect(rows, scanPackage)
}

func (q *queries) PackagesOnboard(ctx context.Context, tailNumber string) ([]models.Package, error) {
	rows, err := q.db.Query(ctx, `SELECT `+packageColumns+` FROM packages WHERE location_kind = $1 AND tail_number = $2 ORDER BY id`+q.forUpdate(), storage.KindPlane, tailNumber)
	if err != nil {
		return nil, fmt.Errorf("list packages onboard: %w", err)
	}
	return collect(rows, scanPackage)
}

func (q *queries) LastTick(ctx context.Context) (time.Time, bool, error) {
	var at time.Time
	err := q.db.QueryRow(ctx, `SELECT last_tick FROM sim_state WHERE id = 1`+q.forUpdate()).Scan(&at)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read last tick: %w", err)
	}
	return at.UTC(), true, nil
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
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
