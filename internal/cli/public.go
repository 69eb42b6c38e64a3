package cli

import (
	"fmt"

	"github.com/celerypayroll/capi/pkg/capi"
	"github.com/spf13/cobra"
)

// newURLCmd creates the url command group
func newURLCmd() *cobra.Command {
	urlCmd := &cobra.Command{
		Use:   "url",
		Short: "Check domain availability",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check DOMAIN",
		Short: "Check whether a domain can still be registered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain := args[0]
			available, err := newSession().CheckURL(cmd.Context(), domain)
			message := ""
			if err != nil {
				// a taken domain is an answer, not a failure
				if !capi.IsCode(err, capi.CodeURLExists) {
					return err
				}
				apiErr, _ := capi.AsAPIError(err)
				message = apiErr.Message
			}

			if jsonOutput {
				kv := map[string]any{"url": domain, "available": available}
				if message != "" {
					kv["message"] = message
				}
				printJSON(cmd.OutOrStdout(), kv)
				return nil
			}
			if available {
				okLabel.Fprintf(cmd.OutOrStdout(), "✓ %s is available\n", domain)
				return nil
			}
			if message == "" {
				message = "not available"
			}
			warnLabel.Fprintf(cmd.OutOrStdout(), "✗ %s: %s\n", domain, message)
			return nil
		},
	}

	urlCmd.AddCommand(checkCmd)
	return urlCmd
}

// newPriceCmd creates the price command
func newPriceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "price",
		Short:   "Get a price quote",
		Example: `  capi price --companies 2 --employees 15`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			companies, _ := cmd.Flags().GetInt("companies")
			employees, _ := cmd.Flags().GetInt("employees")
			if companies < 0 || employees < 0 {
				return fmt.Errorf("companies and employees must not be negative")
			}

			price, err := newSession().GetPrice(cmd.Context(), companies, employees)
			if err != nil {
				return err
			}
			if jsonOutput {
				printJSON(cmd.OutOrStdout(), map[string]any{
					"companies": companies,
					"employees": employees,
					"price":     price,
				})
				return nil
			}
			cmd.Printf("%d companies, %d employees: %s\n", companies, employees, price)
			return nil
		},
	}
	cmd.Flags().Int("companies", 1, "Number of companies")
	cmd.Flags().Int("employees", 0, "Number of employees")
	return cmd
}
