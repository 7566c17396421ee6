package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/clawdsign/pkg/config"
)

// migrateCommand creates the migrate command that prepares the configured store.
func (c *CLI) migrateCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create database tables or indexes for the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger := loggerFromContext(cmd.Context())
			prog := newProgress(logger)

			st, err := openStore(cmd.Context(), cfg.Store, true)
			if err != nil {
				return err
			}
			defer st.Close()

			prog.done("Migrated " + cfg.Store.Backend + " store")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	return cmd
}
