package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"esg-assessment-service/internal/config"
	"esg-assessment-service/internal/domain"
	"esg-assessment-service/internal/emission"
)

// NewLoadFactorsCmd parses an emission-factor CSV and bulk-loads it into the
// emission_factors table, replacing the previous contents.
func NewLoadFactorsCmd(configPath *string) *cobra.Command {
	var csvPath string
	cmd := &cobra.Command{
		Use:   "load-factors",
		Short: "Load the emission-factor reference table from CSV into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			path := csvPath
			if path == "" {
				path = cfg.Factors.CSVPath
			}
			if path == "" {
				return fmt.Errorf("no factor CSV path given (flag --csv or factors.csvPath in config)")
			}
			return loadFactors(cmd.Context(), cfg, path)
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "path to the factor CSV file")
	return cmd
}

func loadFactors(ctx context.Context, cfg config.Config, path string) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	table, err := emission.ParseTable(f)
	if err != nil {
		return err
	}

	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	db := newBunDB(cfg.Postgres.URL)
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM emission_factors`); err != nil {
		_ = tx.Rollback()
		return err
	}
	for _, entry := range table {
		if err := insertFactor(ctx, tx, entry); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	log.Info("factor table loaded", zap.Int("rows", len(table)), zap.String("csv", path))
	return nil
}

func insertFactor(ctx context.Context, tx bun.Tx, entry domain.FactorEntry) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO emission_factors (category, separate, raw_material, unit, kg_co2eq, state, scope)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.Category, entry.Separate, entry.RawMaterial, entry.Unit, entry.KgCO2Eq, entry.State, entry.ScopeTag)
	return err
}
