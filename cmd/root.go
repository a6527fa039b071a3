package cmd

import (
	logx "github.com/Chative-core-poc-v1/bookstore/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookstore",
		Short: "Conversational bookstore assistant",
		Long: `Bookstore is a conversational commerce backend. Customers search the catalog,
buy one or more books in a single message and top up their credits, one chat turn at a time.

Configuration is read from the environment (and a .env file when present).`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newSeedCmd())

	return cmd
}

// setup loads configuration and initialises logging for a command run.
func setup() (AppConfig, error) {
	cfg, err := loadConfig()
	if err != nil {
		return AppConfig{}, err
	}
	logx.Init(logx.LoggerOpts{Environment: cfg.Environment()})
	return cfg, nil
}
