package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gangland/server/gangland/api"
	"github.com/gangland/server/internal/clock"
)

// tokenCmd signs a session the way the identity service does, for local
// testing against a running server.
var tokenCmd = &cobra.Command{
	Use:   "token <player-id>",
	Short: "issue a session token for a player id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions := api.NewSessions(cfg.API.SessionSecret, cfg.API.SessionTTL.Duration, clock.System{})
		token, err := sessions.Issue(args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
		return err
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
