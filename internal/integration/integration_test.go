package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"

	"esg-assessment-service/internal/app"
	"esg-assessment-service/internal/domain"
	"esg-assessment-service/internal/emission"
	pgstore "esg-assessment-service/internal/infra/postgres"
	pgmigrations "esg-assessment-service/internal/infra/postgres/migrations"
	infraredis "esg-assessment-service/internal/infra/redis"
)

func TestAssessmentEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := seedDatabase(t, ctx, pgURL)
	defer db.Close()

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	catalogs := infraredis.NewCatalogRepository(redisClient, pgstore.NewCatalogLoader(pool), 5*time.Minute)
	results := pgstore.NewResultStore(db)
	watches := infraredis.NewWatchRegistry(redisClient, 5*time.Minute)
	service := app.NewAssessmentService(catalogs, results, watches, zap.NewNop())

	result, err := service.Submit(ctx, "acme", map[string]any{
		"1.1": "yes",
		"1.2": "no",
		"2.1": "partial",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.FinalGrade != domain.GradeC {
		t.Fatalf("expected grade C from critical violation, got %s", result.FinalGrade)
	}
	if result.CriticalViolationCount != 1 {
		t.Fatalf("expected 1 critical violation, got %d", result.CriticalViolationCount)
	}

	latest, err := service.Latest(ctx, "acme")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != result.ID || latest.FinalGrade != result.FinalGrade {
		t.Fatalf("latest does not round-trip: %+v vs %+v", latest, result)
	}

	history, err := service.History(ctx, "acme", 1, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 result in history, got %d", len(history))
	}
}

func TestEmissionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := seedDatabase(t, ctx, pgURL)
	defer db.Close()

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	factors := infraredis.NewFactorRepository(redisClient, pgstore.NewFactorLoader(pool), 5*time.Minute)
	store := pgstore.NewResultStore(db)
	service := app.NewEmissionService(factors, store, zap.NewNop())

	opts, err := service.Options(ctx, "scope2", emission.Selection{})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if len(opts.Categories) != 1 || opts.Categories[0] != "Energy" {
		t.Fatalf("expected scope2 categories [Energy], got %v", opts.Categories)
	}

	record, err := service.Calculate(ctx, app.CalcInput{
		CompanyID: "acme",
		Scope:     "scope2",
		Selection: emission.Selection{
			Category:    "Energy",
			Separate:    "Electricity",
			RawMaterial: "Grid mix",
		},
		ActivityAmount: "1000",
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if record.TotalEmission != "433.200000" {
		t.Fatalf("expected total 433.200000, got %s", record.TotalEmission)
	}

	records, err := service.Records(ctx, "acme")
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(records) != 1 || records[0].ID != record.ID {
		t.Fatalf("expected the calculated record back, got %+v", records)
	}
}

func seedDatabase(t *testing.T, ctx context.Context, dsn string) *bun.DB {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(sampleCatalog())
	if err != nil {
		t.Fatalf("marshal catalog: %v", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO question_catalogs (data) VALUES (?::jsonb)`, string(data)); err != nil {
		t.Fatalf("insert catalog: %v", err)
	}

	for _, entry := range sampleFactors() {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO emission_factors (category, separate, raw_material, unit, kg_co2eq, state, scope)
			 VALUES (?, ?, ?, ?, ?::numeric, ?, ?)`,
			entry.Category, entry.Separate, entry.RawMaterial, entry.Unit,
			entry.KgCO2Eq, entry.State, entry.ScopeTag); err != nil {
			t.Fatalf("insert factor: %v", err)
		}
	}
	return db
}

func sampleCatalog() []domain.Question {
	return []domain.Question{
		{ID: "1.1", Category: "Human Rights", Text: "Written human rights policy?", Weight: 5},
		{ID: "1.2", Category: "Human Rights", Text: "No child labor in operations?", Weight: 10,
			CriticalViolation: &domain.CriticalViolation{Grade: "C", Reason: "child labor indication"}},
		{ID: "2.1", Category: "Labor Practices", Text: "Working hours tracked?", Weight: 5},
	}
}

func sampleFactors() []domain.FactorEntry {
	return []domain.FactorEntry{
		{Category: "Energy", Separate: "Electricity", RawMaterial: "Grid mix", Unit: "kWh",
			KgCO2Eq: "0.4332", ScopeTag: "electricity"},
		{Category: "Fuel", Separate: "Diesel", RawMaterial: "Stationary combustion", Unit: "L",
			KgCO2Eq: "2.68", ScopeTag: "combustion"},
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "esg", "POSTGRES_PASSWORD": "esgpass", "POSTGRES_DB": "esgdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://esg:esgpass@%s:%s/esgdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
