// Command medcart serves the e-pharmacy API and manages its database.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Registers the SQL schema migrations.
	_ "github.com/shashiranjanraj/medcart/database/migrations"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "medcart",
	Short:         "medcart e-pharmacy API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}
