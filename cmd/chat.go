package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var (
		userID int64
		name   string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant from the terminal",
		Long: `Starts an interactive session on stdin/stdout using the configured stores.
Type exit or quit to leave.`,
		Example: `  bookstore chat --user-id 1 --name Ada`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			a, err := buildApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, a.router.Welcome(name))

			sc := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "\n> ")
				if !sc.Scan() {
					fmt.Fprintln(out)
					return sc.Err()
				}
				line := strings.TrimSpace(sc.Text())
				switch strings.ToLower(line) {
				case "exit", "quit":
					return nil
				}

				res := a.router.HandleTurn(cmd.Context(), userID, name, line)
				fmt.Fprintln(out, res.Response)
				if res.ErrorCode != "" {
					fmt.Fprintf(out, "[%s]\n", res.ErrorCode)
				}
			}
		},
	}

	cmd.Flags().Int64Var(&userID, "user-id", 1, "Account user id to chat as")
	cmd.Flags().StringVar(&name, "name", "", "Display name used in the greeting")

	return cmd
}
