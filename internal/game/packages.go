package game

import (
	"context"

	"github.com/hongminglow/airfreight/internal/models"
	"github.com/hongminglow/airfreight/internal/storage"
)

// LoadPackage moves a package waiting at an airport onto a plane parked at the same airport.
func (s *Service) LoadPackage(ctx context.Context, packageID, tailNumber, userID string) (models.Package, error) {
	var pkg models.Package
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		if _, err := s.user(ctx, tx, userID); err != nil {
			return err
		}
		p, err := tx.Package(ctx, packageID)
		if err != nil {
			return notFound(err, "package %q not found", packageID)
		}
		plane, err := s.plane(ctx, tx, tailNumber)
		if err != nil {
			return err
		}
		if plane.OwnerID != userID {
			return fail(ErrForbidden, "plane %s does not belong to you", tailNumber)
		}

		planeAirport, grounded := plane.Grounded()
		if !grounded {
			return fail(ErrLocationMismatch, "plane %s is en route", tailNumber)
		}
		at, ok := p.Whereabouts.(models.AtAirport)
		if !ok {
			return fail(ErrLocationMismatch, "package %s is not waiting at an airport", packageID)
		}
		if at.AirportID != planeAirport {
			return fail(ErrLocationMismatch, "package %s is at %s but plane %s is at %s", packageID, at.AirportID, tailNumber, planeAirport)
		}

		if err := s.checkCapacity(ctx, tx, plane, p); err != nil {
			return err
		}

		p.Whereabouts = models.OnPlane{TailNumber: tailNumber}
		if err := tx.SetPackageWhereabouts(ctx, p.ID, p.Whereabouts); err != nil {
			return err
		}
		pkg = p
		return nil
	})
	if err != nil {
		return models.Package{}, err
	}
	return pkg, nil
}

// checkCapacity rejects p when it would overload plane: cargo by mass, passengers by seat.
func (s *Service) checkCapacity(ctx context.Context, tx storage.Tx, plane models.Plane, p models.Package) error {
	model, err := s.planeModel(ctx, tx, plane.ModelID)
	if err != nil {
		return err
	}
	onboard, err := tx.PackagesOnboard(ctx, plane.TailNumber)
	if err != nil {
		return err
	}

	if p.Type == models.Passenger {
		seated := 0
		for _, o := range onboard {
			if o.Type == models.Passenger {
				seated += o.Count
			}
		}
		if seated+p.Count > model.PassengerSeats {
			return fail(ErrCapacityExceeded, "plane %s has %d of %d seats taken, %d more do not fit",
				plane.TailNumber, seated, model.PassengerSeats, p.Count)
		}
		return nil
	}

	var mass float64
	for _, o := range onboard {
		if o.Type != models.Passenger {
			mass += o.Mass()
		}
	}
	if mass+p.Mass() > model.CargoCapacity {
		return fail(ErrCapacityExceeded, "plane %s carries %.1f kg of %.1f kg, %.1f kg more does not fit",
			plane.TailNumber, mass, model.CargoCapacity, p.Mass())
	}
	return nil
}

// UnloadPackage puts a package down at the airport its plane is currently parked at.
func (s *Service) UnloadPackage(ctx context.Context, packageID, userID string) (models.Package, error) {
	var pkg models.Package
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		if _, err := s.user(ctx, tx, userID); err != nil {
			return err
		}
		p, err := tx.Package(ctx, packageID)
		if err != nil {
			return notFound(err, "package %q not found", packageID)
		}
		on, ok := p.Whereabouts.(models.OnPlane)
		if !ok {
			return fail(ErrNotOnPlane, "package %s is not on a plane", packageID)
		}
		plane, err := s.plane(ctx, tx, on.TailNumber)
		if err != nil {
			return err
		}
		if plane.OwnerID != userID {
			return fail(ErrForbidden, "plane %s does not belong to you", on.TailNumber)
		}
		airportID, grounded := plane.Grounded()
		if !grounded {
			return fail(ErrPlaneEnRoute, "plane %s is en route", on.TailNumber)
		}

		p.Whereabouts = models.AtAirport{AirportID: airportID}
		if err := tx.SetPackageWhereabouts(ctx, p.ID, p.Whereabouts); err != nil {
			return err
		}
		pkg = p
		return nil
	})
	if err != nil {
		return models.Package{}, err
	}
	return pkg, nil
}
