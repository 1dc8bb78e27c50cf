package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yukikurage/site-services-api/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ssy",
		Short: "Site Services Tracker API",
		Long:  `Site Services Tracker serves the resident, staff and admin ticketing API.`,
	}

	rootCmd.AddCommand(
		cli.NewServeCommand(),
		cli.NewMigrateCommand(),
		cli.NewCreateAdminCommand(),
		cli.NewPruneSessionsCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
