package commands

import (
	"fmt"
	"time"

	"github.com/Domenick1991/aircargo/internal/bootstrap"
	"github.com/Domenick1991/aircargo/internal/seed"
	"github.com/spf13/cobra"
)

var SeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo data",
}

var (
	seedDays  int
	seedStart string
)

var seedFlightsCmd = &cobra.Command{
	Use:   "flights",
	Short: "Upsert the daily timetable for the next N days",
	Long: `Generates every flight of the base timetable for --days consecutive UTC
days starting at --start (today by default). Flight ids are suffixed with the
day offset, so re-running the command updates rows instead of duplicating them.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if seedDays < 1 {
			return fmt.Errorf("--days must be at least 1")
		}
		start := time.Now().UTC()
		if seedStart != "" {
			parsed, err := time.Parse(time.DateOnly, seedStart)
			if err != nil {
				return fmt.Errorf("--start must be YYYY-MM-DD: %w", err)
			}
			start = parsed
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg)

		stores, err := bootstrap.OpenStores(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer stores.Close()

		flights := seed.Generate(seed.BaseTimetable, start, seedDays)
		written, err := stores.Flights.Upsert(cmd.Context(), flights)
		if err != nil {
			return fmt.Errorf("seed flights: %w", err)
		}
		log.Info("flights seeded", "written", written, "days", seedDays, "from", start.Format(time.DateOnly))
		return nil
	},
}

func init() {
	seedFlightsCmd.Flags().IntVar(&seedDays, "days", 30, "number of days to generate")
	seedFlightsCmd.Flags().StringVar(&seedStart, "start", "", "first day (YYYY-MM-DD, UTC); defaults to today")
	SeedCmd.AddCommand(seedFlightsCmd)
}
