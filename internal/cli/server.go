package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"esg-assessment-service/internal/app"
	"esg-assessment-service/internal/config"
	"esg-assessment-service/internal/domain"
	"esg-assessment-service/internal/emission"
	"esg-assessment-service/internal/infra/memory"
	pgstore "esg-assessment-service/internal/infra/postgres"
	redisinfra "esg-assessment-service/internal/infra/redis"
	transport "esg-assessment-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the assessment server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	factorTTL := config.TTLDuration(cfg.Factors.TTL, time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var catalogLoader memory.CatalogLoader = memory.NewStaticCatalogLoader(sampleCatalog())
	var factorLoader memory.FactorLoader = memory.NewStaticFactorLoader(sampleFactors())
	if pool != nil {
		catalogLoader = pgstore.NewCatalogLoader(pool)
		factorLoader = pgstore.NewFactorLoader(pool)
	} else if cfg.Factors.CSVPath != "" {
		table, err := loadFactorCSV(cfg.Factors.CSVPath)
		if err != nil {
			return err
		}
		factorLoader = memory.NewStaticFactorLoader(table)
	}

	var catalogs app.CatalogRepository
	var factors app.FactorRepository
	if redisClient != nil {
		catalogs = redisinfra.NewCatalogRepository(redisClient, catalogLoader, catalogTTL)
		factors = redisinfra.NewFactorRepository(redisClient, factorLoader, factorTTL)
	} else {
		catalogs = memory.NewCatalogRepository(catalogLoader, catalogTTL)
		factors = memory.NewFactorRepository(factorLoader, factorTTL)
	}

	var results app.ResultStore
	var records app.EmissionStore
	if pool != nil {
		store := pgstore.NewResultStore(newBunDB(cfg.Postgres.URL))
		results = store
		records = store
	} else {
		store := memory.NewResultStore()
		results = store
		records = store
	}

	var watches app.WatchRegistry
	if redisClient != nil {
		watches = redisinfra.NewWatchRegistry(redisClient, redisTTL)
	} else {
		watches = memory.NewWatchRegistry()
	}

	assessments := app.NewAssessmentService(catalogs, results, watches, log)
	emissions := app.NewEmissionService(factors, records, log)

	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	transport.NewRESTHandler(assessments, emissions, log).Register(router)
	router.HandleFunc("/ws/results", transport.NewWSHandler(assessments, log).ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting esg assessment service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleCatalog provides a minimal question set for running without a
// database; production loads the versioned catalog from Postgres.
func sampleCatalog() []domain.Question {
	return []domain.Question{
		{ID: "1.1", Category: "Human Rights", Text: "Does the company have a human rights policy?", Weight: 5},
		{ID: "1.2", Category: "Human Rights", Text: "Are grievance mechanisms available to workers?", Weight: 3,
			CriticalViolation: &domain.CriticalViolation{Grade: "C", Reason: "no remediation channel"}},
		{ID: "2.1", Category: "Labor Practices", Text: "Is forced labor prohibited across the supply chain?", Weight: 5,
			CriticalViolation: &domain.CriticalViolation{Grade: "D", Reason: "forced labor exposure"}},
		{ID: "2.2", Category: "Labor Practices", Text: "Are working hours monitored and capped?", Weight: 2},
		{ID: "3.1", Category: "Environment", Text: "Is there an environmental management system in place?", Weight: 4},
	}
}

func sampleFactors() []domain.FactorEntry {
	return []domain.FactorEntry{
		{Category: "Stationary Combustion", Separate: "Solid Fuel", RawMaterial: "Anthracite Coal",
			Unit: "kg", KgCO2Eq: "2.3326", State: "solid", ScopeTag: "direct"},
		{Category: "Stationary Combustion", Separate: "Gaseous Fuel", RawMaterial: "Natural Gas",
			Unit: "m3", KgCO2Eq: "2.1622", State: "gas", ScopeTag: "direct"},
		{Category: "Purchased Energy", Separate: "Electricity", RawMaterial: "Grid Mix",
			Unit: "kWh", KgCO2Eq: "0.4781", State: "purchased", ScopeTag: "electricity"},
	}
}

func loadFactorCSV(path string) ([]domain.FactorEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return emission.ParseTable(f)
}
