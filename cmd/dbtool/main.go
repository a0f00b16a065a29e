// Command dbtool prepares a database: schema, catalog seeding and development tokens.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hongminglow/airfreight/internal/auth"
	"github.com/hongminglow/airfreight/internal/config"
	"github.com/hongminglow/airfreight/internal/logging"
	"github.com/hongminglow/airfreight/internal/models"
	"github.com/hongminglow/airfreight/internal/seed"
	"github.com/hongminglow/airfreight/internal/storage"
	"github.com/hongminglow/airfreight/internal/storage/backend"
)

const usage = `usage: dbtool <command> [flags]

commands:
  migrate                            create or update the schema
  seed -airports FILE -models FILE   upsert the airport and plane model catalog
  token -user ID [-name NAME]        print a bearer token for local testing
`

func main() {
	_ = godotenv.Load()
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "dbtool %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func run(cmd string, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	switch cmd {
	case "migrate":
		store, err := backend.Open(ctx, cfg, logger)
		if err != nil {
			return err
		}
		store.Close()
		logger.Info("schema ready", zap.String("storage", cfg.StorageDriver))
		return nil
	case "seed":
		return seedCatalog(ctx, cfg, logger, args)
	case "token":
		return printToken(cfg, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func seedCatalog(ctx context.Context, cfg config.Config, logger *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	airportsPath := fs.String("airports", "", "airports CSV (ident,name,latitude_deg,longitude_deg,elevation_ft)")
	modelsPath := fs.String("models", "", "plane models JSON array")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *airportsPath == "" && *modelsPath == "" {
		return fmt.Errorf("nothing to seed: pass -airports and/or -models")
	}

	var airports []models.Airport
	if *airportsPath != "" {
		f, err := os.Open(*airportsPath)
		if err != nil {
			return err
		}
		airports, err = seed.Airports(f)
		f.Close()
		if err != nil {
			return err
		}
	}
	var planeModels []models.PlaneModel
	if *modelsPath != "" {
		f, err := os.Open(*modelsPath)
		if err != nil {
			return err
		}
		planeModels, err = seed.PlaneModels(f)
		f.Close()
		if err != nil {
			return err
		}
	}

	store, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	err = store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		if len(airports) > 0 {
			if err := tx.UpsertAirports(ctx, airports); err != nil {
				return err
			}
		}
		if len(planeModels) > 0 {
			return tx.UpsertPlaneModels(ctx, planeModels)
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info("catalog seeded", zap.Int("airports", len(airports)), zap.Int("plane_models", len(planeModels)))
	return nil
}

func printToken(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	user := fs.String("user", "", "user id placed in the token subject")
	name := fs.String("name", "", "display name")
	ttl := fs.Duration("ttl", cfg.JWTTTL, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ttl <= 0 {
		*ttl = time.Hour
	}
	token, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, *ttl).Generate(*user, *name)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
