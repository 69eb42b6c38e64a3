package cli

import (
	"github.com/celerypayroll/capi/pkg/capi"
	"github.com/spf13/cobra"
)

// newAccountCmd creates the account command group
func newAccountCmd() *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Create, update and look up accounts",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new account",
		Long: `Create a new account.

Examples:
  capi account create --name "Acme" --email info@acme.nl
  capi account create --name "Acme" --email info@acme.nl --language en --override-existing-user`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := languageFlag(cmd)
			if err != nil {
				return err
			}
			in := capi.AccountInput{Language: lang}
			in.Name, _ = cmd.Flags().GetString("name")
			in.Email, _ = cmd.Flags().GetString("email")
			in.Affiliate, _ = cmd.Flags().GetString("affiliate")
			in.OverrideExistingUser, _ = cmd.Flags().GetBool("override-existing-user")

			result, err := newSession().CreateAccount(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}
	createCmd.Flags().String("name", "", "Account name")
	createCmd.Flags().String("email", "", "Email address of the owner")
	createCmd.Flags().String("affiliate", "", "Affiliate code")
	createCmd.Flags().String("language", "", "Language of the account (default nl)")
	createCmd.Flags().Bool("override-existing-user", false, "Attach the account to an existing user with the same email")
	createCmd.MarkFlagRequired("name")
	createCmd.MarkFlagRequired("email")

	updateCmd := &cobra.Command{
		Use:   "update ACCOUNT",
		Short: "Update the fields of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var upd capi.AccountUpdate
			upd.Name, _ = cmd.Flags().GetString("name")
			upd.Email, _ = cmd.Flags().GetString("email")
			upd.Affiliate, _ = cmd.Flags().GetString("affiliate")
			if lang, _ := cmd.Flags().GetString("language"); lang != "" {
				var err error
				if upd.Language, err = normalizeLanguage(lang); err != nil {
					return err
				}
			}

			result, err := newSession().UpdateAccount(cmd.Context(), args[0], upd)
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}
	updateCmd.Flags().String("name", "", "New account name")
	updateCmd.Flags().String("email", "", "New email address")
	updateCmd.Flags().String("affiliate", "", "New affiliate code")
	updateCmd.Flags().String("language", "", "New language")

	getCmd := &cobra.Command{
		Use:   "get DOMAIN",
		Short: "Look an account up by its domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := newSession().GetAccount(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}

	searchCmd := &cobra.Command{
		Use:   "search EMAIL",
		Short: "Find accounts by email address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := languageFlag(cmd)
			if err != nil {
				return err
			}
			result, err := newSession().SearchAccount(cmd.Context(), args[0], lang)
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}
	searchCmd.Flags().String("language", "", "Language of the results (default nl)")

	priceCmd := &cobra.Command{
		Use:   "price ACCOUNT",
		Short: "Show the current price of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := newSession().GetAccountPrice(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}

	remindersCmd := &cobra.Command{
		Use:   "reminders ACCOUNT",
		Short: "Send the pending reminders of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := newSession().SendReminders(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}

	accountCmd.AddCommand(createCmd, updateCmd, getCmd, searchCmd, priceCmd, remindersCmd)
	return accountCmd
}
