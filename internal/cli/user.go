package cli

import (
	"github.com/celerypayroll/capi/pkg/capi"
	"github.com/spf13/cobra"
)

// newUserCmd creates the user command group
func newUserCmd() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Notify users and switch their context",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	notifyCmd := &cobra.Command{
		Use:   "notify USER",
		Short: "Send a notification to a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := capi.Notification{User: args[0]}
			n.Subject, _ = cmd.Flags().GetString("subject")
			n.Message, _ = cmd.Flags().GetString("message")
			result, err := newSession().SendNotification(cmd.Context(), n)
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}
	notifyCmd.Flags().String("subject", "", "Notification subject")
	notifyCmd.Flags().String("message", "", "Notification text")
	notifyCmd.MarkFlagRequired("subject")
	notifyCmd.MarkFlagRequired("message")

	contextCmd := &cobra.Command{
		Use:   "context USER CONTEXT",
		Short: "Switch the active context of a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := newSession().SetUserContext(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}

	userCmd.AddCommand(notifyCmd, contextCmd)
	return userCmd
}

// newSSOCmd creates the sso command group
func newSSOCmd() *cobra.Command {
	ssoCmd := &cobra.Command{
		Use:   "sso",
		Short: "Manage single sign-on contexts",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	getCmd := &cobra.Command{
		Use:   "get USER",
		Short: "List the single sign-on contexts of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := newSession().GetSSOContext(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}

	createCmd := &cobra.Command{
		Use:   "create USER CONTEXT",
		Short: "Create a single sign-on context",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := newSession().CreateSSOContext(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete USER [CONTEXT_ID]",
		Short: "Delete one or all single sign-on contexts of a user",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			contextID := ""
			if len(args) == 2 {
				contextID = args[1]
			}
			result, err := newSession().DeleteSSOContext(cmd.Context(), args[0], contextID)
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}

	ssoCmd.AddCommand(getCmd, createCmd, deleteCmd)
	return ssoCmd
}
