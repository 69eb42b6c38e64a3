package cli

import (
	"github.com/spf13/cobra"
)

// newCompanyCmd creates the company command group
func newCompanyCmd() *cobra.Command {
	companyCmd := &cobra.Command{
		Use:   "company",
		Short: "Create and move companies",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	createCmd := &cobra.Command{
		Use:   "create ACCOUNT NAME",
		Short: "Add a company to an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := newSession().CreateCompany(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}

	moveCmd := &cobra.Command{
		Use:   "move COMPANY ACCOUNT",
		Short: "Move a company to another account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := newSession().MoveCompany(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}

	integrationCmd := &cobra.Command{
		Use:   "integration COMPANY INTEGRATION",
		Short: "Enable or disable an integration for a company",
		Example: `  capi company integration cmp_1 exact
  capi company integration cmp_1 exact --enabled=false`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, _ := cmd.Flags().GetBool("enabled")
			result, err := newSession().SetCompanyIntegration(cmd.Context(), args[0], args[1], enabled)
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}
	integrationCmd.Flags().Bool("enabled", true, "Whether the integration is enabled")

	companyCmd.AddCommand(createCmd, moveCmd, integrationCmd)
	return companyCmd
}
