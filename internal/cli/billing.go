package cli

import (
	"github.com/celerypayroll/capi/pkg/capi"
	"github.com/spf13/cobra"
)

// newDiscountCmd creates the discount command group
func newDiscountCmd() *cobra.Command {
	discountCmd := &cobra.Command{
		Use:   "discount",
		Short: "Manage the discounts of an account",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	discountFromFlags := func(cmd *cobra.Command, account string) capi.Discount {
		d := capi.Discount{Account: account}
		d.Percentage, _ = cmd.Flags().GetFloat64("percentage")
		d.Months, _ = cmd.Flags().GetInt("months")
		d.Description, _ = cmd.Flags().GetString("description")
		return d
	}
	addFlags := func(cmd *cobra.Command) {
		cmd.Flags().Float64("percentage", 0, "Discount percentage")
		cmd.Flags().Int("months", 0, "Number of months the discount applies (0 for no end)")
		cmd.Flags().String("description", "", "Description shown on invoices")
	}

	addCmd := &cobra.Command{
		Use:     "add ACCOUNT",
		Short:   "Add a discount to an account",
		Example: `  capi discount add acc_123 --percentage 10 --months 3 --description "Launch"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := newSession().AddDiscount(cmd.Context(), discountFromFlags(cmd, args[0]))
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}
	addFlags(addCmd)
	addCmd.MarkFlagRequired("percentage")

	updateCmd := &cobra.Command{
		Use:   "update ACCOUNT DISCOUNT",
		Short: "Change a discount",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := discountFromFlags(cmd, args[0])
			d.ID = args[1]
			result, err := newSession().UpdateDiscount(cmd.Context(), d)
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}
	addFlags(updateCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete ACCOUNT DISCOUNT",
		Short: "Remove a discount",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := newSession().DeleteDiscount(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}

	discountCmd.AddCommand(addCmd, updateCmd, deleteCmd)
	return discountCmd
}

// newInvoiceCmd creates the invoice command group
func newInvoiceCmd() *cobra.Command {
	invoiceCmd := &cobra.Command{
		Use:   "invoice",
		Short: "Create, synchronise and send invoices",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	createCmd := &cobra.Command{
		Use:   "create ACCOUNT",
		Short: "Create the invoice of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			period, _ := cmd.Flags().GetString("period")
			result, err := newSession().CreateInvoice(cmd.Context(), args[0], period)
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}
	createCmd.Flags().String("period", "", "Invoice period as YYYY-MM (default current)")

	syncCmd := &cobra.Command{
		Use:   "sync ACCOUNT INVOICE",
		Short: "Push an invoice to the bookkeeping integration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := newSession().SyncInvoice(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}

	sendCmd := &cobra.Command{
		Use:   "send ACCOUNT INVOICE",
		Short: "Email an invoice",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			result, err := newSession().SendInvoice(cmd.Context(), args[0], args[1], email)
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}
	sendCmd.Flags().String("email", "", "Recipient (default the account owner)")

	invoiceCmd.AddCommand(createCmd, syncCmd, sendCmd)
	return invoiceCmd
}
