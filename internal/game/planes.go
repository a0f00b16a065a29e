package game

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/hongminglow/airfreight/internal/geo"
	"github.com/hongminglow/airfreight/internal/models"
	"github.com/hongminglow/airfreight/internal/storage"
)

// Purchase buys a new plane of modelID parked at airportID, fully fuelled and in
// mint condition.
func (s *Service) Purchase(ctx context.Context, tailNumber, modelID, airportID, userID string) (models.Plane, error) {
	if !ValidTailNumber(tailNumber) {
		return models.Plane{}, fail(ErrInvalidInput, "tail number %q must be 6 upper-case letters or digits", tailNumber)
	}

	var plane models.Plane
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		user, err := s.user(ctx, tx, userID)
		if err != nil {
			return err
		}
		model, err := s.planeModel(ctx, tx, modelID)
		if err != nil {
			return err
		}
		if _, err := s.airport(ctx, tx, airportID); err != nil {
			return err
		}

		if _, err := tx.Plane(ctx, tailNumber); err == nil {
			return fail(ErrConflict, "tail number %s is already registered", tailNumber)
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		if err := debit(ctx, tx, user, model.Cost, "a "+model.Name); err != nil {
			return err
		}

		plane = models.Plane{
			TailNumber:   tailNumber,
			OwnerID:      userID,
			ModelID:      modelID,
			Fuel:         model.FuelCapacity,
			Condition:    models.MaxCondition,
			UpgradeLevel: 0,
			Whereabouts:  models.AtAirport{AirportID: airportID},
		}
		if err := tx.InsertPlane(ctx, plane); err != nil {
			if errors.Is(err, storage.ErrAlreadyExists) {
				return fail(ErrConflict, "tail number %s is already registered", tailNumber)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return models.Plane{}, err
	}
	s.log.Info("plane purchased", zap.String("tail", tailNumber), zap.String("model", modelID), zap.String("user", userID))
	return plane, nil
}

// Upgrade raises the plane's upgrade level by one at the scheduled price.
func (s *Service) Upgrade(ctx context.Context, tailNumber, userID string) (models.Plane, error) {
	var plane models.Plane
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		user, p, err := s.ownedPlane(ctx, tx, tailNumber, userID)
		if err != nil {
			return err
		}
		if p.UpgradeLevel >= s.rules.MaxUpgradeLevel() {
			return fail(ErrLimitReached, "plane %s is already at the maximum upgrade level %d", tailNumber, s.rules.MaxUpgradeLevel())
		}
		if err := debit(ctx, tx, user, s.rules.UpgradeCosts[p.UpgradeLevel], "the upgrade"); err != nil {
			return err
		}
		p.UpgradeLevel++
		if err := tx.UpdatePlane(ctx, p); err != nil {
			return err
		}
		plane = p
		return nil
	})
	if err != nil {
		return models.Plane{}, err
	}
	return plane, nil
}

// Embark departs a grounded plane for destinationID, burning the fuel for the whole
// flight up front.
func (s *Service) Embark(ctx context.Context, tailNumber, destinationID, userID string) (models.Plane, error) {
	var plane models.Plane
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		_, p, err := s.ownedPlane(ctx, tx, tailNumber, userID)
		if err != nil {
			return err
		}
		originID, grounded := p.Grounded()
		if !grounded {
			return fail(ErrAlreadyEnRoute, "plane %s is already en route", tailNumber)
		}
		if destinationID == originID {
			return fail(ErrInvalidDestination, "plane %s is already at %s", tailNumber, destinationID)
		}
		dest, err := s.catalog.Airport(ctx, tx, destinationID)
		if errors.Is(err, storage.ErrNotFound) {
			return fail(ErrInvalidDestination, "destination %q does not exist", destinationID)
		} else if err != nil {
			return err
		}
		origin, err := s.airport(ctx, tx, originID)
		if err != nil {
			return err
		}
		model, err := s.planeModel(ctx, tx, p.ModelID)
		if err != nil {
			return err
		}

		distance := geo.Distance(origin.Location, dest.Location)
		required := s.rules.Performance.RequiredFuel(model, p.UpgradeLevel, distance)
		if p.Fuel < required {
			return fail(ErrInsufficientFuel, "flight to %s needs %.1f kg of fuel but %s has %.1f kg", destinationID, required, tailNumber, p.Fuel)
		}

		p.Fuel -= required
		p.Whereabouts = models.EnRoute{OriginID: originID, DestinationID: destinationID, Departure: s.clock()}
		if err := tx.UpdatePlane(ctx, p); err != nil {
			return err
		}
		plane = p
		return nil
	})
	if err != nil {
		return models.Plane{}, err
	}
	s.log.Info("plane departed", zap.String("tail", tailNumber), zap.String("destination", destinationID))
	return plane, nil
}

// Refuel buys amount kg of fuel for a grounded plane.
func (s *Service) Refuel(ctx context.Context, tailNumber string, amount float64, userID string) (models.Plane, error) {
	if !(amount > 0) || math.IsInf(amount, 0) {
		return models.Plane{}, fail(ErrInvalidInput, "fuel amount must be positive")
	}

	var plane models.Plane
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		user, p, err := s.ownedPlane(ctx, tx, tailNumber, userID)
		if err != nil {
			return err
		}
		if _, grounded := p.Grounded(); !grounded {
			return fail(ErrAlreadyEnRoute, "plane %s cannot refuel in flight", tailNumber)
		}
		model, err := s.planeModel(ctx, tx, p.ModelID)
		if err != nil {
			return err
		}
		if p.Fuel+amount > model.FuelCapacity {
			return fail(ErrCapacityExceeded, "plane %s holds %.1f kg of fuel, %.1f kg more would exceed its %.1f kg capacity",
				tailNumber, p.Fuel, amount, model.FuelCapacity)
		}
		if err := debit(ctx, tx, user, amount*s.rules.FuelPricePerKg, "the fuel"); err != nil {
			return err
		}
		p.Fuel += amount
		if err := tx.UpdatePlane(ctx, p); err != nil {
			return err
		}
		plane = p
		return nil
	})
	if err != nil {
		return models.Plane{}, err
	}
	return plane, nil
}

// Repair restores a grounded plane to full condition.
func (s *Service) Repair(ctx context.Context, tailNumber, userID string) (models.Plane, error) {
	var plane models.Plane
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		user, p, err := s.ownedPlane(ctx, tx, tailNumber, userID)
		if err != nil {
			return err
		}
		if _, grounded := p.Grounded(); !grounded {
			return fail(ErrAlreadyEnRoute, "plane %s can only be repaired at an airport", tailNumber)
		}
		cost := (models.MaxCondition - p.Condition) * s.rules.RepairPricePerPoint
		if err := debit(ctx, tx, user, cost, "the repair"); err != nil {
			return err
		}
		p.Condition = models.MaxCondition
		if err := tx.UpdatePlane(ctx, p); err != nil {
			return err
		}
		plane = p
		return nil
	})
	if err != nil {
		return models.Plane{}, err
	}
	return plane, nil
}

// Decommission scraps a plane without refund. Packages aboard are scrapped with it.
func (s *Service) Decommission(ctx context.Context, tailNumber, userID string) error {
	var scrapped int64
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		if _, _, err := s.ownedPlane(ctx, tx, tailNumber, userID); err != nil {
			return err
		}
		n, err := tx.DeletePackagesOnboard(ctx, tailNumber)
		if err != nil {
			return err
		}
		scrapped = n
		return notFound(tx.DeletePlane(ctx, tailNumber), "plane %q not found", tailNumber)
	})
	if err != nil {
		return err
	}
	s.log.Info("plane decommissioned", zap.String("tail", tailNumber), zap.Int64("packages_scrapped", scrapped))
	return nil
}
