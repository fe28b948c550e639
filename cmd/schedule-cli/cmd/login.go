package cmd

import (
	"fmt"
	"schedule-backend/services/schedule"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and print a session that can be passed to --session.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session(cmd.Context())
		if err != nil {
			return err
		}
		encoded, err := schedule.EncodeSession(s)
		if err != nil {
			return err
		}
		fmt.Println(encoded)
		return nil
	},
}
