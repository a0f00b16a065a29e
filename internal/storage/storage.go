package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hongminglow/airfreight/internal/geo"
	"github.com/hongminglow/airfreight/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrInsufficientBalance is returned when a funds adjustment would leave a negative balance.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrTxConflict is returned when a transaction kept failing on concurrent access after retries.
var ErrTxConflict = errors.New("transaction conflict")

// Reader exposes typed lookups. Single-row reads inside a transaction lock the row
// on backends that support it.
type Reader interface {
	User(ctx context.Context, id string) (models.User, error)

	PlaneModel(ctx context.Context, id string) (models.PlaneModel, error)
	PlaneModels(ctx context.Context, page Page) ([]models.PlaneModel, error)

	Airport(ctx context.Context, id string) (models.Airport, error)
	Airports(ctx context.Context, page Page) ([]models.Airport, error)
	AllAirports(ctx context.Context) ([]models.Airport, error)
	AirportsInBox(ctx context.Context, box geo.Box) ([]models.Airport, error)

	Plane(ctx context.Context, tailNumber string) (models.Plane, error)
	Planes(ctx context.Context, page Page) ([]models.Plane, error)
	PlanesEnRoute(ctx context.Context) ([]models.Plane, error)

	Package(ctx context.Context, id string) (models.Package, error)
	Packages(ctx context.Context, page Page) ([]models.Package, error)
	PackagesAtAirport(ctx context.Context, airportID string) ([]models.Package, error)
	PackagesOnboard(ctx context.Context, tailNumber string) ([]models.Package, error)

	// LastTick returns the persisted time of the last simulation tick, if any.
	LastTick(ctx context.Context) (time.Time, bool, error)
}

// Writer exposes typed mutations.
type Writer interface {
	InsertUser(ctx context.Context, user models.User) error
	RenameUser(ctx context.Context, id, name string) error
	DeleteUser(ctx context.Context, id string) error
	// AdjustFunds adds delta to the user's balance as one conditional update. It fails
	// with ErrInsufficientBalance instead of going below zero.
	AdjustFunds(ctx context.Context, userID string, delta float64) error

	InsertPlane(ctx context.Context, plane models.Plane) error
	UpdatePlane(ctx context.Context, plane models.Plane) error
	DeletePlane(ctx context.Context, tailNumber string) error

	InsertPackages(ctx context.Context, pkgs []models.Package) error
	SetPackageWhereabouts(ctx context.Context, id string, w models.PackageWhereabouts) error
	DeletePackage(ctx context.Context, id string) error
	DeletePackagesOnboard(ctx context.Context, tailNumber string) (int64, error)
	DeleteExpiredPackages(ctx context.Context, now time.Time) (int64, error)

	SetLastTick(ctx context.Context, at time.Time) error

	UpsertAirports(ctx context.Context, airports []models.Airport) error
	UpsertPlaneModels(ctx context.Context, planeModels []models.PlaneModel) error
}

// Tx is a unit of work. It is only valid inside the InTx callback.
type Tx interface {
	Reader
	Writer
}

// Store is the shared entity store.
type Store interface {
	Reader
	// InTx runs fn in one atomic transaction and commits when fn returns nil. Conflicts
	// with concurrent transactions are retried a bounded number of times; errors returned
	// by fn roll back and are passed through unchanged. fn may be invoked more than once.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Close()
}
