package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hongminglow/airfreight/internal/models"
	"github.com/hongminglow/airfreight/internal/storage"
)

func expectOne(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (q *queries) InsertUser(ctx context.Context, user models.User) error {
	_, err := q.db.Exec(ctx, `INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4)`,
		user.ID, user.Name, user.Funds, user.CreatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (q *queries) RenameUser(ctx context.Context, id, name string) error {
	return expectOne(q.db.Exec(ctx, `UPDATE users SET name = $1 WHERE id = $2`, name, id))
}

func (q *queries) DeleteUser(ctx context.Context, id string) error {
	return expectOne(q.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id))
}

func (q *queries) AdjustFunds(ctx context.Context, userID string, delta float64) error {
	tag, err := q.db.Exec(ctx, `UPDATE users SET funds = funds + $1 WHERE id = $2 AND funds + $1 >= 0`, delta, userID)
	if err != nil {
		return fmt.Errorf("adjust funds: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var one int
	if err := q.db.QueryRow(ctx, `SELECT 1 FROM users WHERE id = $1`, userID).Scan(&one); err != nil {
		return noRows(err)
	}
	return storage.ErrInsufficientBalance
}

func planeArgs(p models.Plane) ([]any, error) {
	loc, err := storage.EncodePlane(p.Whereabouts)
	if err != nil {
		return nil, err
	}
	return []any{p.TailNumber, p.OwnerID, p.ModelID, p.Fuel, p.Condition, p.UpgradeLevel,
		loc.Kind, loc.AirportID, loc.OriginID, loc.DestinationID, loc.DepartedAt}, nil
}

func (q *queries) InsertPlane(ctx context.Context, plane models.Plane) error {
	args, err := planeArgs(plane)
	if err != nil {
		return err
	}
	_, err = q.db.Exec(ctx, `INSERT INTO planes (`+planeColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, args...)
	if err != nil {
		if isUniqueViolation(err) {
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
	return expectOne(q.db.Exec(ctx, `UPDATE planes SET
		owner_id = $2, model_id = $3, fuel = $4, condition = $5, upgrade_level = $6,
		location_kind = $7, airport_id = $8, origin_id = $9, destination_id = $10, departed_at = $11
		WHERE tail_number = $1`, args...))
}

func (q *queries) DeletePlane(ctx context.Context, tailNumber string) error {
	return expectOne(q.db.Exec(ctx, `DELETE FROM planes WHERE tail_number = $1`, tailNumber))
}

func (q *queries) InsertPackages(ctx context.Context, pkgs []models.Package) error {
	if len(pkgs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range pkgs {
		loc, err := storage.EncodePackage(p.Whereabouts)
		if err != nil {
			return err
		}
		batch.Queue(`INSERT INTO packages (`+packageColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			p.ID, p.Name, string(p.Type), p.Count, p.UnitMass, p.Goal, p.Payout, p.Expiration.UTC(),
			loc.Kind, loc.AirportID, loc.TailNumber)
	}
	results := q.db.SendBatch(ctx, batch)
	defer results.Close()
	for range pkgs {
		if _, err := results.Exec(); err != nil {
			if isUniqueViolation(err) {
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
	return expectOne(q.db.Exec(ctx, `UPDATE packages SET location_kind = $1, airport_id = $2, tail_number = $3 WHERE id = $4`,
		loc.Kind, loc.AirportID, loc.TailNumber, id))
}

func (q *queries) DeletePackage(ctx context.Context, id string) error {
	return expectOne(q.db.Exec(ctx, `DELETE FROM packages WHERE id = $1`, id))
}

func (q *queries) DeletePackagesOnboard(ctx context.Context, tailNumber string) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM packages WHERE location_kind = $1 AND tail_number = $2`, storage.KindPlane, tailNumber)
	if err != nil {
		return 0, fmt.Errorf("delete packages onboard: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (q *queries) DeleteExpiredPackages(ctx context.Context, now time.Time) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM packages WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired packages: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (q *queries) SetLastTick(ctx context.Context, at time.Time) error {
	_, err := q.db.Exec(ctx, `INSERT INTO sim_state (id, last_tick) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET last_tick = EXCLUDED.last_tick`, at.UTC())
	if err != nil {
		return fmt.Errorf("set last tick: %w", err)
	}
	return nil
}

func (q *queries) UpsertAirports(ctx context.Context, airports []models.Airport) error {
	for _, a := range airports {
		_, err := q.db.Exec(ctx, `INSERT INTO airports (`+airportColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name, latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude,
				elevation_m = EXCLUDED.elevation_m, runway_length_m = EXCLUDED.runway_length_m,
				runway_width_m = EXCLUDED.runway_width_m, runway_lighted = EXCLUDED.runway_lighted`,
			a.ID, a.Name, a.Location.Lat, a.Location.Lon, a.ElevationM, a.Runway.LengthM, a.Runway.WidthM, a.Runway.Lighted)
		if err != nil {
			return fmt.Errorf("upsert airport %s: %w", a.ID, err)
		}
	}
	return nil
}

func (q *queries) UpsertPlaneModels(ctx context.Context, planeModels []models.PlaneModel) error {
	for _, m := range planeModels {
		_, err := q.db.Exec(ctx, `INSERT INTO plane_models (`+planeModelColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name, cruise_speed = EXCLUDED.cruise_speed, cost = EXCLUDED.cost,
				cargo_capacity = EXCLUDED.cargo_capacity, fuel_burn = EXCLUDED.fuel_burn,
				fuel_capacity = EXCLUDED.fuel_capacity, passenger_seats = EXCLUDED.passenger_seats`,
			m.ID, m.Name, m.CruiseSpeed, m.Cost, m.CargoCapacity, m.FuelBurn, m.FuelCapacity, m.PassengerSeats)
		if err != nil {
			return fmt.Errorf("upsert plane model %s: %w", m.ID, err)
		}
	}
	return nil
}
