package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Domenick1991/aircargo/cmd/cargoctl/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "cargoctl",
	Short: "Administrative tasks for the cargo booking service",
	Long: `cargoctl applies database migrations and loads the demo flight
schedule. It reads the same config.yaml as the API; flags and CARGO_*
environment variables override it.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(commands.MigrateCmd)
	rootCmd.AddCommand(commands.SeedCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "config.yaml", "config file")
	rootCmd.PersistentFlags().String("dsn", "", "postgres connection string (overrides database.*)")
	rootCmd.PersistentFlags().String("storage", "", "storage driver: postgres or mongo")
	rootCmd.PersistentFlags().String("mongo-uri", "", "mongo connection URI")
	rootCmd.PersistentFlags().String("log-level", "", "log level")

	for _, name := range []string{"config", "dsn", "storage", "mongo-uri", "log-level"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	viper.SetEnvPrefix("cargo")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}
