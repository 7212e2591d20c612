package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	dashboardapp "plant-monitor/internal/analytics/application/dashboard"
	apihttp "plant-monitor/internal/api/http"
	"plant-monitor/internal/eventing"
	masterdataapp "plant-monitor/internal/masterdata/application"
	masterdata "plant-monitor/internal/masterdata/domain"
	masterdatarepo "plant-monitor/internal/masterdata/infrastructure/postgres"
	"plant-monitor/internal/observability/metrics"
	telemetryapp "plant-monitor/internal/telemetry/application"
	telemetry "plant-monitor/internal/telemetry/domain"
	telemetrymemory "plant-monitor/internal/telemetry/infrastructure/memory"
	telemetrypostgres "plant-monitor/internal/telemetry/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	plantCfg, err := telemetryapp.LoadConfig(cfg.PlantConfigPath)
	if err != nil {
		logger.Fatalf("plant config error: %v", err)
	}

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("storage error: %v", err)
	}
	defer store.Close()

	metrics.Init(store.db, logger)

	bus := eventing.NewInMemoryBus()
	broker := apihttp.NewSSEBroker()
	eventing.SubscribeTyped(bus, broker.HandleReadingsIngested)
	metrics.RegisterStreamClients(broker.Clients)

	model := plantCfg.SignalModel()
	generator := telemetry.NewRandomGenerator()

	if cfg.SeedOnStart {
		provisioner, err := masterdataapp.NewProvisioner(store.facilities, store.assets)
		if err != nil {
			logger.Fatalf("provisioner init error: %v", err)
		}
		seeder, err := telemetryapp.NewSeeder(
			store.facilities,
			provisioner,
			store.readings,
			model,
			generator,
			telemetryapp.SeedConfig{
				Lookback: cfg.SeedLookback,
				Step:     cfg.SeedStep,
				Catalog:  plantCfg.Catalog(),
			},
			telemetryapp.WithSeedPublisher(bus),
			telemetryapp.WithSeedLogger(logger),
		)
		if err != nil {
			logger.Fatalf("seeder init error: %v", err)
		}
		if _, err := seeder.RunHistoricalSeedIfEmpty(ctx); err != nil {
			logger.Fatalf("seed error: %v", err)
		}
	}

	ingestor, err := telemetryapp.NewIngestor(
		store.assets,
		store.readings,
		model,
		generator,
		telemetryapp.WithPublisher(bus),
		telemetryapp.WithIngestLogger(logger),
	)
	if err != nil {
		logger.Fatalf("ingestor init error: %v", err)
	}
	scheduler, err := telemetryapp.NewScheduler(
		ingestor,
		telemetryapp.WithInterval(cfg.IngestInterval),
		telemetryapp.WithTickTimeout(cfg.IngestTickTimeout),
		telemetryapp.WithSchedulerLogger(logger),
	)
	if err != nil {
		logger.Fatalf("scheduler init error: %v", err)
	}

	dashboards, err := dashboardapp.NewService(store.facilities, store.assets, store.readings, nil)
	if err != nil {
		logger.Fatalf("dashboard service init error: %v", err)
	}
	queries, err := telemetryapp.NewQueryService(store.readings, store.assets)
	if err != nil {
		logger.Fatalf("query service init error: %v", err)
	}

	mux := http.NewServeMux()
	apihttp.Register(mux, apihttp.Dependencies{
		Facilities: store.facilities,
		Assets:     store.assets,
		Dashboards: dashboards,
		Queries:    queries,
		Broker:     broker,
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	handle := scheduler.Start(ctx)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: apihttp.LoggingMiddleware(apihttp.CORSMiddleware(mux, cfg.CORSAllowOrigin), logger),
	}
	go func() {
		logger.Printf("http listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("http server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Printf("shutting down")
	handle.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("http shutdown error: %v", err)
	}
}

type storage struct {
	db         *sql.DB
	facilities masterdata.FacilityRepository
	assets     masterdata.AssetRepository
	readings   telemetry.ReadingRepository
}

func (s *storage) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func openStorage(ctx context.Context, cfg config, logger *log.Logger) (*storage, error) {
	if cfg.StorageDriver == "memory" {
		logger.Printf("storage: in-memory driver")
		mem := telemetrymemory.NewStore()
		return &storage{
			facilities: mem.Facilities(),
			assets:     mem.Assets(),
			readings:   mem.Readings(),
		}, nil
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL or PG_DSN is required")
	}
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := masterdatarepo.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := telemetrypostgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Printf("storage: postgres driver")
	return &storage{
		db:         db,
		facilities: masterdatarepo.NewFacilityRepository(db),
		assets:     masterdatarepo.NewAssetRepository(db),
		readings:   telemetrypostgres.NewReadingRepository(db),
	}, nil
}

type config struct {
	DatabaseURL       string
	StorageDriver     string
	HTTPAddr          string
	PlantConfigPath   string
	IngestInterval    time.Duration
	IngestTickTimeout time.Duration
	SeedOnStart       bool
	SeedLookback      time.Duration
	SeedStep          time.Duration
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	CORSAllowOrigin   string
	ShutdownTimeout   time.Duration
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:       getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		StorageDriver:     strings.ToLower(getenvDefault("STORAGE_DRIVER", "postgres")),
		HTTPAddr:          getenvDefault("HTTP_ADDR", ":8080"),
		PlantConfigPath:   getenvDefault("PLANT_CONFIG", ""),
		IngestInterval:    getenvDuration("INGEST_INTERVAL", telemetryapp.DefaultTickInterval),
		IngestTickTimeout: getenvDuration("INGEST_TICK_TIMEOUT", telemetryapp.DefaultTickTimeout),
		SeedOnStart:       getenvBool("SEED_ON_START", true),
		SeedLookback:      getenvDuration("SEED_LOOKBACK", telemetryapp.DefaultSeedLookback),
		SeedStep:          getenvDuration("SEED_STEP", telemetryapp.DefaultSeedStep),
		DBMaxOpenConns:    getenvIntDefault("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns:    getenvIntDefault("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxLifetime: getenvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		CORSAllowOrigin:   getenvDefault("CORS_ALLOW_ORIGIN", "*"),
		ShutdownTimeout:   getenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
	switch cfg.StorageDriver {
	case "postgres", "memory":
	default:
		log.Fatalf("STORAGE_DRIVER must be postgres or memory, got %q", cfg.StorageDriver)
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
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

func getenvDuration(key string, fallback time.Duration) time.Duration {
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
