package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"kijiji-rentals/services"
	"kijiji-rentals/storage"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "filter a processed CSV for analysis.",
	Long:  "drop processed listings that are unusable for analysis and remove duplicates.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClean(cmd.OutOrStdout())
	},
}

var (
	cleanInput  string
	cleanOutput string
)

func init() {
	cleanCmd.Flags().StringVarP(
		&cleanInput, "input", "i", "ads_processed.csv", "processed listings CSV")
	cleanCmd.Flags().StringVarP(
		&cleanOutput, "output", "o", "", "cleaned CSV (default <input>_cleaned.csv)")
}

func runClean(out io.Writer) error {
	if err := requireFile(cleanInput); err != nil {
		return err
	}

	_, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Close()

	output := cleanOutput
	if output == "" {
		output = derivedPath(cleanInput, "_cleaned.csv", "_processed")
	}

	logger.Info("=== Kijiji rentals cleaning starting ===")
	table, err := storage.NewCSVReader(cleanInput).Read()
	if err != nil {
		return err
	}
	before := table.Len()
	logger.Info("Loaded %d processed listings from %s", before, cleanInput)

	services.NewTyper(logger, services.OutputSchema).Apply(table)
	services.NewQualityFilter(logger).Apply(table)
	logger.Info("Cleaned dataset: %d of %d listings kept", table.Len(), before)

	if table.Len() == 0 {
		logger.Warn("All listings were dropped during cleaning")
	}

	csvWriter := storage.NewCSVWriter(output, services.DateColumns(services.OutputSchema)...)
	if err := csvWriter.Write(table); err != nil {
		return err
	}
	logger.Info("Clean listings saved to %s", output)

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(out, insightSvc.Generate(table))
	return nil
}
