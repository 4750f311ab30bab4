package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stationhub/stationhub/internal/app"
	"github.com/stationhub/stationhub/internal/auth"
	"github.com/stationhub/stationhub/internal/masterdata/companies"
	"github.com/stationhub/stationhub/internal/masterdata/locations"
	"github.com/stationhub/stationhub/internal/masterdata/stations"
	"github.com/stationhub/stationhub/internal/platform/db"
	"github.com/stationhub/stationhub/internal/rbac"
	"github.com/stationhub/stationhub/internal/shared"
	"github.com/stationhub/stationhub/migrations"
)

func main() {
	migrate := flag.Bool("migrate", true, "apply embedded schema migrations first")
	sample := flag.Bool("sample", false, "insert sample locations, a company and a station")
	rollback := flag.Int("rollback", -1, "revert N migrations (0 reverts all) and exit")
	flag.Parse()

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg)
	ctx := context.Background()

	if *rollback >= 0 {
		fmt.Println("→ Reverting migrations...")
		if err := migrations.Rollback(cfg.PGDSN, *rollback); err != nil {
			log.Fatalf("rollback: %v", err)
		}
		return
	}

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{})
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if *migrate {
		fmt.Println("→ Applying migrations...")
		version, err := migrations.Apply(cfg.PGDSN)
		if err != nil {
			log.Fatalf("migrate: %v", err)
		}
		fmt.Println("  schema at version", version)
	}

	fmt.Println("→ Seeding roles, permissions and administrator...")
	hasher, err := auth.NewHasher(cfg.BcryptCost)
	if err != nil {
		log.Fatalf("hasher: %v", err)
	}
	hash, err := hasher.Hash(cfg.SeedAdminPassword)
	if err != nil {
		log.Fatalf("hash admin password: %v", err)
	}
	rbacService := rbac.NewService(rbac.NewRepository(pool), logger)
	created, err := rbacService.Seed(ctx, &rbac.AdminAccount{
		Username:     cfg.SeedAdminUsername,
		Email:        cfg.SeedAdminEmail,
		PasswordHash: hash,
	})
	if err != nil {
		log.Fatalf("seed rbac: %v", err)
	}
	if !created {
		fmt.Println("  already seeded, nothing to do")
	}

	if *sample {
		fmt.Println("→ Seeding sample master data...")
		if err := seedSample(ctx, pool); err != nil {
			log.Fatalf("seed sample: %v", err)
		}
	}

	fmt.Println("✓ Seed complete at", time.Now().Format(time.RFC3339))
}

// seedSample goes through the services so normalisation matches the API.
// Existing rows are left alone.
func seedSample(ctx context.Context, pool *pgxpool.Pool) error {
	locs := locations.NewService(locations.NewRepository(pool))
	country, err := locs.CreateCountry(ctx, locations.CountryInput{Name: "Indonesia", Code: "ID"})
	if errors.Is(err, shared.ErrConflict) {
		fmt.Println("  sample data present, skipping")
		return nil
	}
	if err != nil {
		return err
	}
	region, err := locs.CreateRegion(ctx, locations.RegionInput{Name: "Bali", CountryID: country.ID})
	if err != nil {
		return err
	}
	city, err := locs.CreateCity(ctx, locations.CityInput{Name: "Denpasar", RegionID: region.ID})
	if err != nil {
		return err
	}

	company, err := companies.NewService(companies.NewRepository(pool)).Create(ctx, companies.CreateInput{
		Name:      "Nusantara Energi",
		Email:     "ops@nusantara-energi.example",
		CountryID: country.ID,
	})
	if err != nil {
		return err
	}

	_, err = stations.NewService(stations.NewRepository(pool)).Create(ctx, stations.CreateInput{
		Name:      "SPBU Sunset Road",
		CompanyID: company.ID,
		TIN:       "01.234.567.8-901.000",
		Street:    "Jl. Sunset Road 88",
		CityID:    city.ID,
	})
	return err
}
