// Package commands implements the carrot CLI.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"

	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "carrot",
	Short: "Carrot - employee reward back-office API",
	Long: `Carrot serves the REST API for the employee recognition system:
users, roles, barns, bazaars, rewards, sharing rules and transactions,
behind JWT bearer authentication.

Every configuration key can be overridden with CARROT_<SECTION>_<KEY>,
for example CARROT_JWT_SECRET or CARROT_DATABASE_DRIVER.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./carrot.yaml if present)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}
