package cli

import (
	"github.com/spf13/cobra"

	"github.com/yukikurage/site-services-api/internal/database"
)

func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := bootstrap(""); err != nil {
				return err
			}
			return database.Migrate()
		},
	}
}
