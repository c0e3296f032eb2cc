package cmd

import (
	"fmt"

	"github.com/projectdesk/config"
	"github.com/projectdesk/database"
	"github.com/projectdesk/utils"
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command
func NewMigrateCommand() *cobra.Command {
	var (
		seed          bool
		adminPassword string
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update tables",
		Long: `Create or update the database tables.

With --seed, reference data is inserted into an empty database: the
department, start_date and end_date attributes, an admin account and two
sample projects. Without --admin-password or ADMIN_PASSWORD a random admin
password is generated and printed.

Examples:
  projectdesk migrate
  ADMIN_PASSWORD=s3cret projectdesk migrate --seed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			defer closeDB(db, log)

			if err := database.Migrate(db); err != nil {
				return err
			}
			log.Info("migration completed")

			if !seed {
				return nil
			}

			if adminPassword == "" {
				adminPassword = config.GetEnv("ADMIN_PASSWORD", "")
			}
			if adminPassword == "" {
				generated, err := utils.GenerateSecurePassword(16)
				if err != nil {
					return err
				}
				adminPassword = generated
				// printed once, never logged
				fmt.Fprintf(cmd.OutOrStdout(), "generated admin password: %s\n", adminPassword)
			}
			return database.Seed(db, adminPassword, log)
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "insert reference data when the database is empty")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "", "password for the seeded admin account")
	return cmd
}
