package commands

import (
	"database/sql"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/Domenick1991/aircargo/config"
	"github.com/Domenick1991/aircargo/internal/repository"
	"github.com/Domenick1991/aircargo/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
	Long: `Apply or roll back the SQL migrations. With storage.driver=mongo,
"migrate up" creates the collection indexes instead.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg)

		if cfg.Storage.Driver == config.StorageDriverMongo {
			client, err := repository.ConnectMongo(cmd.Context(), cfg.Mongo)
			if err != nil {
				return err
			}
			defer client.Disconnect(cmd.Context())
			if err := repository.EnsureMongoIndexes(cmd.Context(), client.Database(cfg.Mongo.Database)); err != nil {
				return err
			}
			log.Info("mongo indexes ensured", "database", cfg.Mongo.Database)
			return nil
		}

		db, err := openSQL(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		results, err := migrations.Up(cmd.Context(), db)
		if err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		for _, r := range results {
			log.Info("migration applied", "version", r.Source.Version, "file", r.Source.Path, "duration", r.Duration)
		}
		if len(results) == 0 {
			log.Info("schema is up to date")
		}
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Storage.Driver != config.StorageDriverPostgres {
			return fmt.Errorf("migrate down is only supported for %s", config.StorageDriverPostgres)
		}

		db, err := openSQL(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		r, err := migrations.Down(cmd.Context(), db)
		if err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
		newLogger(cfg).Info("migration rolled back", "version", r.Source.Version, "file", r.Source.Path)
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openSQL(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		statuses, err := migrations.Status(cmd.Context(), db)
		if err != nil {
			return fmt.Errorf("migrate status: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "Version\tState\tApplied At\tFile")
		for _, s := range statuses {
			applied := "-"
			if !s.AppliedAt.IsZero() {
				applied = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.Source.Version, s.State, applied, s.Source.Path)
		}
		return w.Flush()
	},
}

func openSQL(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

func init() {
	MigrateCmd.AddCommand(migrateUpCmd)
	MigrateCmd.AddCommand(migrateDownCmd)
	MigrateCmd.AddCommand(migrateStatusCmd)
}
