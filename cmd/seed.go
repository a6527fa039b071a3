package cmd

import (
	"errors"
	"fmt"

	logx "github.com/Chative-core-poc-v1/bookstore/pkg/logger"
	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed [file]",
		Short: "Load a YAML catalog into the configured record store",
		Long: `Writes books and accounts from a YAML file into the sqlite or redis record store.
The file defaults to STORE_SEED_FILE; without either, a small demo catalog is used.

  books:
    - {title: Dune, author: Frank Herbert, quantity: 5}
  accounts:
    - {user_id: 1, balance: 100}`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			if cfg.Store.Backend == backendMemory {
				return errors.New("the memory record store is not persistent; set STORE_BACKEND to sqlite or redis")
			}

			path := cfg.Store.SeedFile
			if len(args) == 1 {
				path = args[0]
			}
			seed, err := loadSeed(path)
			if err != nil {
				return err
			}

			a := &app{}
			defer a.Close()
			records, err := a.openRecords(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if err := seed.Apply(cmd.Context(), records); err != nil {
				return err
			}

			logx.Info().Str("store", cfg.Store.Backend).Str("file", path).Msg("catalog seeded")
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d books and %d accounts into %s store\n",
				len(seed.Books), len(seed.Accounts), cfg.Store.Backend)
			return nil
		},
	}
	return cmd
}
