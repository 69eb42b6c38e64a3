package cli

import (
	"github.com/spf13/cobra"
)

// newCallCmd creates the call command, a fallback for endpoints without a
// dedicated command.
func newCallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call METHOD",
		Short: "GET an endpoint by its dotted name",
		Long: `GET an endpoint by its dotted name with only the token as parameter.
The name is translated to a path by replacing dots with slashes.

Example:
  capi call service
  capi call account.price`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := newSession().Call(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}
}
