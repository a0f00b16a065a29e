package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hongminglow/airfreight/internal/models"
	"github.com/hongminglow/airfreight/internal/storage"
)

func affected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func expectOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (q *queries) InsertUser(ctx context.Context, user models.User) error {
	_, err := q.db.ExecContext(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?)`,
		user.ID, user.Name, user.Funds, nanos(user.CreatedAt))
	if err != nil {
		if isConstraint(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (q *queries) RenameUser(ctx context.Context, id, name string) error {
	res, err := q.db.ExecContext(ctx, `UPDATE users SET name = ? WHERE id = ?`, name, id)
	return expectOne(res, err)
}

func (q *queries) DeleteUser(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return expectOne(res, err)
}

func (q *queries) AdjustFunds(ctx context.Context, userID string, delta float64) error {
	res, err := q.db.ExecContext(ctx, `UPDATE users SET funds = funds + ? WHERE id = ? AND funds + ? >= 0`, delta, userID, delta)
	if err != nil {
		return fmt.Errorf("adjust funds: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	var one int
	if err := q.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, userID).Scan(&one); err != nil {
		return noRows(err)
	}
	return storage.ErrInsufficientBalance
}

// text maps a nil pointer to NULL.
func text(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func planeArgs(p models.Plane) ([]any, error) {
	loc, err := storage.EncodePlane(p.Whereabouts)
	if err != nil {
		return nil, err
	}
	var departed any
	if loc.DepartedAt != nil {
		departed = nanos(*loc.DepartedAt)
	}
	return []any{p.OwnerID, p.ModelID, p.Fuel, p.Condition, p.UpgradeLevel,
		loc.Kind, text(loc.AirportID), text(loc.OriginID), text(loc.DestinationID), departed, p.TailNumber}, nil
}

func (q *queries) InsertPlane(ctx context.Context, plane models.Plane) error {
	args, err := planeArgs(plane)
	if err != nil {
		return err
	}
	_, err = q.db.ExecContext(ctx, `INSERT INTO planes
		(owner_id, model_id, fuel, condition, upgrade_level, location_kind, airport_id, origin_id, destination_id, departed_at, tail_number)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		if isConstraint(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert plane: %w", err)
	}
	return nil
}

func (q *queries) UpdatePlane(ctx context.Context, plane models.Plane) error {
	args, err := planeArgs(plane)
	if err != nil {
		return err
	}
	res, err := q.db.ExecContext(ctx, `UPDATE planes SET
		owner_id = ?, model_id = ?, fuel = ?, condition = ?, upgrade_level = ?,
		location_kind = ?, airport_id = ?, origin_id = ?, destination_id = ?, departed_at = ?
		WHERE tail_number = ?`, args...)
	return expectOne(res, err)
}

func (q *queries) DeletePlane(ctx context.Context, tailNumber string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM planes WHERE tail_number = ?`, tailNumber)
	return expectOne(res, err)
}

func (q *queries) InsertPackages(ctx context.Context, pkgs []models.Package) error {
	for _, p := range pkgs {
		loc, err := storage.EncodePackage(p.Whereabouts)
		if err != nil {
			return err
		}
		_, err = q.db.ExecContext(ctx, `INSERT INTO packages (`+packageColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, string(p.Type), p.Count, p.UnitMass, p.Goal, p.Payout, nanos(p.Expiration),
			loc.Kind, text(loc.AirportID), text(loc.TailNumber))
		if err != nil {
			if isConstraint(err) {
				return storage.ErrAlreadyExists
			}
			return fmt.Errorf("insert package: %w", err)
		}
	}
	return nil
}

func (q *queries) SetPackageWhereabouts(ctx context.Context, id string, w models.PackageWhereabouts) error {
	loc, err := storage.EncodePackage(w)
	if err != nil {
		return err
	}
	res, err := q.db.ExecContext(ctx, `UPDATE packages SET location_kind = ?, airport_id = ?, tail_number = ? WHERE id = ?`,
		loc.Kind, text(loc.AirportID), text(loc.TailNumber), id)
	return expectOne(res, err)
}

func (q *queries) DeletePackage(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM packages WHERE id = ?`, id)
	return expectOne(res, err)
}

func (q *queries) DeletePackagesOnboard(ctx context.Context, tailNumber string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM packages WHERE location_kind = ? AND tail_number = ?`, storage.KindPlane, tailNumber)
	if err != nil {
		return 0, fmt.Errorf("delete packages onboard: %w", err)
	}
	return affected(res)
}

func (q *queries) DeleteExpiredPackages(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM packages WHERE expires_at <= ?`, nanos(now))
	if err != nil {
		return 0, fmt.Errorf("delete expired packages: %w", err)
	}
	return affected(res)
}

func (q *queries) SetLastTick(ctx context.Context, at time.Time) error {
	_, err := q.db.ExecContext(ctx, `INSERT INTO sim_state (id, last_tick) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET last_tick = excluded.last_tick`, nanos(at))
	if err != nil {
		return fmt.Errorf("set last tick: %w", err)
	}
	return nil
}

func (q *queries) UpsertAirports(ctx context.Context, airports []models.Airport) error {
	for _, a := range airports {
		_, err := q.db.ExecContext(ctx, `INSERT INTO airports (`+airportColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name, latitude = excluded.latitude, longitude = excluded.longitude,
				elevation_m = excluded.elevation_m, runway_length_m = excluded.runway_length_m,
				runway_width_m = excluded.runway_width_m, runway_lighted = excluded.runway_lighted`,
			a.ID, a.Name, a.Location.Lat, a.Location.Lon, a.ElevationM, a.Runway.LengthM, a.Runway.WidthM, a.Runway.Lighted)
		if err != nil {
			return fmt.Errorf("upsert airport %s: %w", a.ID, err)
		}
	}
	return nil
}

func (q *queries) UpsertPlaneModels(ctx context.Context, planeModels []models.PlaneModel) error {
	for _, m := range planeModels {
		_, err := q.db.ExecContext(ctx, `INSERT INTO plane_models (`+planeModelColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name, cruise_speed = excluded.cruise_speed, cost = excluded.cost,
				cargo_capacity = excluded.cargo_capacity, fuel_burn = excluded.fuel_burn,
				fuel_capacity = excluded.fuel_capacity, passenger_seats = excluded.passenger_seats`,
			m.ID, m.Name, m.CruiseSpeed, m.Cost, m.CargoCapacity, m.FuelBurn, m.FuelCapacity, m.PassengerSeats)
		if err != nil {
			return fmt.Errorf("upsert plane model %s: %w", m.ID, err)
		}
	}
	return nil
}
