package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"strconv"
	"time"

	masterdataapp "plant-monitor/internal/masterdata/application"
	masterdatarepo "plant-monitor/internal/masterdata/infrastructure/postgres"
	telemetryapp "plant-monitor/internal/telemetry/application"
	telemetry "plant-monitor/internal/telemetry/domain"
	telemetrypostgres "plant-monitor/internal/telemetry/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type config struct {
	dsn        string
	configPath string
	reset      bool
	seed       bool
	lookback   time.Duration
	step       time.Duration
	randSeed   uint64
}

func main() {
	cfg := parseConfig()
	if cfg.dsn == "" {
		log.Fatal("PG_DSN or DATABASE_URL is required")
	}

	plantCfg, err := telemetryapp.LoadConfig(cfg.configPath)
	if err != nil {
		log.Fatalf("load plant config: %v", err)
	}

	db, err := sql.Open("pgx", cfg.dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("ping db: %v", err)
	}

	if err := masterdatarepo.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("ensure masterdata schema: %v", err)
	}
	if err := telemetrypostgres.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("ensure telemetry schema: %v", err)
	}
	log.Printf("schema ready")

	facilities := masterdatarepo.NewFacilityRepository(db)
	assets := masterdatarepo.NewAssetRepository(db)
	readings := telemetrypostgres.NewReadingRepository(db)

	if cfg.reset {
		existing, err := facilities.List(ctx)
		if err != nil {
			log.Fatalf("list facilities: %v", err)
		}
		for _, facility := range existing {
			if err := facilities.Delete(ctx, facility.ID); err != nil {
				log.Fatalf("delete facility %d: %v", facility.ID, err)
			}
		}
		log.Printf("reset: deleted facilities=%d", len(existing))
	}

	if !cfg.seed {
		return
	}

	provisioner, err := masterdataapp.NewProvisioner(facilities, assets)
	if err != nil {
		log.Fatalf("provisioner: %v", err)
	}
	generator := telemetry.NewRandomGenerator()
	if cfg.randSeed != 0 {
		generator = telemetry.NewGenerator(cfg.randSeed)
	}
	seeder, err := telemetryapp.NewSeeder(
		facilities,
		provisioner,
		readings,
		plantCfg.SignalModel(),
		generator,
		telemetryapp.SeedConfig{
			Lookback: cfg.lookback,
			Step:     cfg.step,
			Catalog:  plantCfg.Catalog(),
		},
	)
	if err != nil {
		log.Fatalf("seeder: %v", err)
	}
	result, err := seeder.RunHistoricalSeedIfEmpty(ctx)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	if result.Skipped {
		log.Printf("seed skipped: facilities already present (use -reset to reseed)")
		return
	}
	log.Printf("seeded facilities=%d assets=%d readings=%d", result.Facilities, result.Assets, result.Readings)
}

func parseConfig() config {
	cfg := config{}
	flag.StringVar(&cfg.dsn, "pg-dsn", envOrDefault("PG_DSN", envOrDefault("DATABASE_URL", "")), "Postgres DSN")
	flag.StringVar(&cfg.configPath, "config", envOrDefault("PLANT_CONFIG", ""), "plant config YAML (profiles and facilities)")
	flag.BoolVar(&cfg.reset, "reset", envOrBool("INITDB_RESET", false), "delete every facility with its assets and readings first")
	flag.BoolVar(&cfg.seed, "seed", envOrBool("INITDB_SEED", true), "seed the catalog and its reading history when empty")
	flag.DurationVar(&cfg.lookback, "lookback", envOrDuration("SEED_LOOKBACK", telemetryapp.DefaultSeedLookback), "history window to backfill")
	flag.DurationVar(&cfg.step, "step", envOrDuration("SEED_STEP", telemetryapp.DefaultSeedStep), "spacing between backfilled readings")
	flag.Uint64Var(&cfg.randSeed, "rand-seed", 0, "generator seed for reproducible data (0 = random)")
	flag.Parse()
	return cfg
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envOrBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
