package cmd

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"kijiji-rentals/config"
	"kijiji-rentals/geocode"
	"kijiji-rentals/models"
	"kijiji-rentals/services"
	"kijiji-rentals/storage"
	"kijiji-rentals/utils"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "normalize a raw listings CSV.",
	Long:  "normalize a raw listings CSV into the typed output schema, optionally geocoding locations.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd.Context(), cmd.OutOrStdout())
	},
}

var (
	processInput   string
	processOutput  string
	processGeocode bool
	defaultCity    string
	defaultCountry string
	workers        int
)

func init() {
	processCmd.Flags().StringVarP(
		&processInput, "input", "i", "ads.csv", "raw listings CSV")
	processCmd.Flags().StringVarP(
		&processOutput, "output", "o", "", "processed CSV (default <input>_processed.csv)")
	processCmd.Flags().BoolVar(
		&processGeocode, "geocode", false, "look up longitude/latitude for each location")
	processCmd.Flags().StringVar(
		&defaultCity, "city", "", "city used when a location cannot be geocoded")
	processCmd.Flags().StringVar(
		&defaultCountry, "country", "Canada", "country used when a location cannot be geocoded")
	processCmd.Flags().IntVar(
		&workers, "workers", 0, "parallel workers for per-record stages (default from config)")
}

func runProcess(ctx context.Context, out io.Writer) error {
	if err := requireFile(processInput); err != nil {
		return err
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Close()

	runID := uuid.New()
	logger = logger.With("run", runID.String())

	if workers > 0 {
		cfg.Workers = workers
	}
	output := processOutput
	if output == "" {
		output = derivedPath(processInput, "_processed.csv")
	}

	logger.Info("=== Kijiji rentals processing starting ===")
	logger.Info("Input: %s | output: %s | geocode: %t | workers: %d",
		processInput, output, processGeocode, cfg.Workers)

	var previous *models.Table
	if fileExists(output) {
		logger.Info("Loading previous output %s...", output)
		if previous, err = storage.NewCSVReader(output).Read(); err != nil {
			logger.Warn("Previous output unreadable, ignoring it: %v", err)
			previous = nil
		}
	}

	table, err := storage.NewCSVReader(processInput).Read()
	if err != nil {
		return err
	}
	logger.Info("Loaded %d raw listings from %s", table.Len(), processInput)

	pipeline := services.NewPipeline(logger, services.PipelineOptions{
		Workers:       cfg.Workers,
		PriceFromText: cfg.PriceFromText,
	})
	pipeline.Run(table)

	csvWriter := storage.NewCSVWriter(output, services.DateColumns(services.OutputSchema)...)
	if err := csvWriter.Write(table); err != nil {
		return err
	}
	logger.Info("Processed listings saved to %s", output)

	if processGeocode {
		annotateLocations(ctx, cfg, logger, table, previous)
		services.NewTyper(logger, services.OutputSchema).Apply(table)
		if err := csvWriter.Write(table); err != nil {
			return err
		}
		logger.Info("Geocoded listings saved to %s", output)
	}

	writeSinks(cfg, logger, runID, table)

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(out, insightSvc.Generate(table))
	return nil
}

func annotateLocations(ctx context.Context, cfg *config.Config, logger *utils.Logger, table, previous *models.Table) {
	client := geocode.NewNominatim(cfg.GeocoderURL, cfg.GeocoderUserAgent,
		geocode.WithTimeout(cfg.GeocoderTimeout()))
	limited := geocode.NewLimited(client, geocode.LimitOptions{
		MinDelay:   cfg.GeocoderMinDelay(),
		MaxPerHour: cfg.GeocoderMaxPerHour,
		MaxRetries: cfg.GeocoderMaxRetries,
		ErrorWait:  cfg.GeocoderErrorWait(),
	}, logger)

	annotator := geocode.NewAnnotator(limited, defaultCity, defaultCountry, logger)
	if n := annotator.Seed(previous); n > 0 {
		logger.Info("[geocode] Reusing coordinates for %d known locations", n)
	}

	logger.Info("Querying coordinates, this will take some time...")
	if _, err := annotator.Apply(ctx, table); err != nil {
		logger.Warn("Geocoding interrupted: %v", err)
	}
}

// writeSinks stores the table in the optional SQL databases. Failures are
// logged; the CSV output is already complete.
func writeSinks(cfg *config.Config, logger *utils.Logger, runID uuid.UUID, table *models.Table) {
	type sink struct {
		name   string
		writer storage.TableWriter
	}
	var sinks []sink

	if cfg.SQLitePath != "" {
		sqliteWriter, err := storage.NewSQLiteWriter(cfg.SQLitePath, services.OutputSchema)
		if err != nil {
			logger.Error("Failed to open SQLite database: %v", err)
		} else {
			sinks = append(sinks, sink{"SQLite " + cfg.SQLitePath, sqliteWriter})
		}
	}

	if cfg.PostgresEnabled {
		pgWriter, err := storage.NewPostgresWriter(cfg.DSN(), runID, services.OutputSchema)
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			logger.Error("Make sure the database is running: docker compose up -d")
		} else {
			sinks = append(sinks, sink{"PostgreSQL", pgWriter})
		}
	}

	for _, s := range sinks {
		if err := s.writer.Write(table); err != nil {
			logger.Error("%s write failed: %v", s.name, err)
		} else {
			logger.Info("Listings stored in %s (table: rental_listings)", s.name)
		}
		if err := s.writer.Close(); err != nil {
			logger.Warn("%s close failed: %v", s.name, err)
		}
	}
}
