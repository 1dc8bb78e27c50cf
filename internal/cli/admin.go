package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yukikurage/site-services-api/internal/models"
	"github.com/yukikurage/site-services-api/internal/services"
)

func NewCreateAdminCommand() *cobra.Command {
	var fullName, email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap("")
			if err != nil {
				return err
			}

			user, err := newAuthService(cfg).CreateUser(cmd.Context(), services.RegisterInput{
				FullName: fullName,
				Email:    email,
				Password: password,
				Role:     string(models.RoleAdmin),
			})
			if err != nil {
				return fmt.Errorf("failed to create admin: %w", err)
			}

			log.Info("admin created", "user_id", user.ID, "email", user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&fullName, "name", "Administrator", "Full name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func NewPruneSessionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune-sessions",
		Short: "Delete expired sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap("")
			if err != nil {
				return err
			}

			n, err := newAuthService(cfg).PruneSessions(cmd.Context())
			if err != nil {
				return err
			}
			log.Info("expired sessions removed", "count", n)
			return nil
		},
	}
}
