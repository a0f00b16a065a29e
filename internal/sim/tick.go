// Package sim advances the world: it resolves arrivals and deliveries, purges expired
// packages, spawns new ones and decides when a tick is due.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/airfreight/internal/catalog"
	"github.com/hongminglow/airfreight/internal/flight"
	"github.com/hongminglow/airfreight/internal/geo"
	"github.com/hongminglow/airfreight/internal/models"
	"github.com/hongminglow/airfreight/internal/storage"
)

// Report summarizes one tick.
type Report struct {
	At        time.Time
	Arrived   int
	Delivered int
	Payout    float64
	Expired   int64
	Spawned   int
}

// Simulator runs the steps of a tick. Each step commits on its own; a failed step
// leaves earlier steps of the tick committed.
type Simulator struct {
	store       storage.Store
	catalog     *catalog.Cache
	perf        flight.Performance
	wearPerHour float64
	spawner     *Spawner
	log         *zap.Logger
}

// SimulatorConfig holds the physical rules applied during a tick.
type SimulatorConfig struct {
	Performance flight.Performance
	// WearPerFlightHour is the condition lost per hour flown, applied on arrival.
	WearPerFlightHour float64
}

// NewSimulator builds a Simulator.
func NewSimulator(store storage.Store, cat *catalog.Cache, cfg SimulatorConfig, spawner *Spawner, log *zap.Logger) *Simulator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Simulator{
		store:       store,
		catalog:     cat,
		perf:        cfg.Performance,
		wearPerHour: cfg.WearPerFlightHour,
		spawner:     spawner,
		log:         log.Named("sim"),
	}
}

// Tick runs one tick evaluated at simulated time at. Steps run in order even when an
// earlier one fails; the failures are returned together.
func (s *Simulator) Tick(ctx context.Context, at time.Time) (Report, error) {
	rep := Report{At: at}
	var errs []error

	if err := s.resolveArrivals(ctx, at, &rep); err != nil {
		errs = append(errs, fmt.Errorf("arrivals: %w", err))
	}

	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		n, err := tx.DeleteExpiredPackages(ctx, at)
		rep.Expired = n
		return err
	})
	if err != nil {
		errs = append(errs, fmt.Errorf("expire: %w", err))
	}

	if err := s.spawn(ctx, at, &rep); err != nil {
		errs = append(errs, fmt.Errorf("spawn: %w", err))
	}

	s.log.Info("tick complete",
		zap.Time("at", at),
		zap.Int("arrived", rep.Arrived),
		zap.Int("delivered", rep.Delivered),
		zap.Float64("payout", rep.Payout),
		zap.Int64("expired", rep.Expired),
		zap.Int("spawned", rep.Spawned),
	)
	if len(errs) > 0 {
		return rep, fmt.Errorf("tick at %s: %w", at.Format(time.RFC3339), errors.Join(errs...))
	}
	return rep, nil
}

func (s *Simulator) spawn(ctx context.Context, at time.Time, rep *Report) error {
	if s.spawner == nil {
		return nil
	}
	pkgs, err := s.spawner.Generate(ctx, s.store, at)
	if err != nil {
		return err
	}
	if len(pkgs) == 0 {
		return nil
	}
	err = s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.InsertPackages(ctx, pkgs)
	})
	if err != nil {
		return err
	}
	rep.Spawned = len(pkgs)
	return nil
}

// resolveArrivals lands every plane whose flight has ended by at and cashes in the
// packages it carried to their goal, one transaction per plane.
func (s *Simulator) resolveArrivals(ctx context.Context, at time.Time, rep *Report) error {
	enRoute, err := s.store.PlanesEnRoute(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, candidate := range enRoute {
		var landed bool
		var delivered int
		var payout float64
		err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
			landed, delivered, payout = false, 0, 0

			plane, err := tx.Plane(ctx, candidate.TailNumber)
			if errors.Is(err, storage.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			trip, ok := plane.Whereabouts.(models.EnRoute)
			if !ok {
				return nil
			}
			arrival, duration, err := s.arrival(ctx, tx, plane, trip)
			if err != nil {
				return err
			}
			if arrival.After(at) {
				return nil
			}

			plane.Whereabouts = models.AtAirport{AirportID: trip.DestinationID}
			if s.wearPerHour > 0 {
				plane.Condition = math.Max(0, plane.Condition-s.wearPerHour*duration.Hours())
			}
			if err := tx.UpdatePlane(ctx, plane); err != nil {
				return err
			}
			landed = true

			onboard, err := tx.PackagesOnboard(ctx, plane.TailNumber)
			if err != nil {
				return err
			}
			for _, pkg := range onboard {
				if pkg.Goal != trip.DestinationID {
					continue
				}
				if err := tx.AdjustFunds(ctx, plane.OwnerID, pkg.Payout); err != nil {
					if !errors.Is(err, storage.ErrNotFound) {
						return err
					}
					s.log.Debug("payout owner missing", zap.String("user", plane.OwnerID), zap.String("package", pkg.ID))
				}
				if err := tx.DeletePackage(ctx, pkg.ID); err != nil {
					return err
				}
				delivered++
				payout += pkg.Payout
			}
			return nil
		})
		if err != nil {
			s.log.Error("resolve arrival", zap.String("tail", candidate.TailNumber), zap.Error(err))
			errs = append(errs, fmt.Errorf("plane %s: %w", candidate.TailNumber, err))
			continue
		}
		if landed {
			rep.Arrived++
			rep.Delivered += delivered
			rep.Payout += payout
		}
	}
	return errors.Join(errs...)
}

func (s *Simulator) arrival(ctx context.Context, r storage.Reader, plane models.Plane, f models.EnRoute) (time.Time, time.Duration, error) {
	model, err := s.catalog.PlaneModel(ctx, r, plane.ModelID)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("model %s: %w", plane.ModelID, err)
	}
	origin, err := s.catalog.Airport(ctx, r, f.OriginID)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("origin %s: %w", f.OriginID, err)
	}
	dest, err := s.catalog.Airport(ctx, r, f.DestinationID)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("destination %s: %w", f.DestinationID, err)
	}
	arrival := s.perf.Arrival(model, plane.UpgradeLevel, origin, dest, f.Departure)
	return arrival, s.perf.Duration(model, plane.UpgradeLevel, geo.Distance(origin.Location, dest.Location)), nil
}
