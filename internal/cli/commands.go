package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/celerypayroll/capi/internal/common/logtrace"
	"github.com/celerypayroll/capi/pkg/capi"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	jsonOutput bool
	configFile string
	logLevel   string
	baseURL    string
)

var ErrAlreadyHandled = errors.New("already handled")

var okLabel = color.New(color.FgGreen)
var errorLabel = color.New(color.FgRed)
var warnLabel = color.New(color.FgYellow)

// NewRootCmd builds the command tree. Each call returns an independent tree
// with flags reset to their defaults.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "capi [command] [flags]",
		Short: "capi - A command line client for the Celery payroll API",
		Long: `capi is a command line client for the Celery payroll account management API.
It authenticates with the credentials from your configuration file and calls
the API on your behalf.

Examples:
  # Check whether a domain is still available
  capi url check example.com

  # Create an account
  capi account create --name "Acme" --email info@acme.nl

  # Ask for a price quote
  capi price --companies 2 --employees 15

  # Call an endpoint without a dedicated command
  capi call account.price`,
		PersistentPreRunE: preRunHandlePersistents,
		SilenceErrors:     true, // Prevent Cobra from printing the error
		SilenceUsage:      true, // Prevent Cobra from printing usage on error
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	// Set up persistent flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "", "", "Path to configuration file to override default")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&baseURL, "base-url", "", "", "Override the API base URL")

	// Add commands
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newEndpointsCmd())
	rootCmd.AddCommand(newAccountCmd())
	rootCmd.AddCommand(newDiscountCmd())
	rootCmd.AddCommand(newInvoiceCmd())
	rootCmd.AddCommand(newCompanyCmd())
	rootCmd.AddCommand(newURLCmd())
	rootCmd.AddCommand(newPriceCmd())
	rootCmd.AddCommand(newUserCmd())
	rootCmd.AddCommand(newSSOCmd())
	rootCmd.AddCommand(newCallCmd())
	return rootCmd
}

// Execute runs the CLI. This is called by main.main().
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, ErrAlreadyHandled) {
			os.Exit(1)
		}
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError reports err in the selected output format. API errors keep
// their code.
func printError(w io.Writer, err error) {
	apiErr, isAPI := capi.AsAPIError(err)
	if jsonOutput {
		kv := map[string]any{
			"error": err.Error(),
		}
		if isAPI {
			kv["code"] = int(apiErr.Code)
			kv["message"] = apiErr.Message
		}
		printJSON(w, kv)
		return
	}
	if isAPI {
		errorLabel.Fprintf(w, "Error: %s (code %d, %s)\n", apiErr.Message, int(apiErr.Code), apiErr.Code)
		return
	}
	errorLabel.Fprintf(w, "Error: %v\n", err)
}

// preRunHandlePersistents handles persistent flags and configuration loading before command execution
func preRunHandlePersistents(cmd *cobra.Command, args []string) error {
	logtrace.InitLogger(logLevel, true)

	if configFile == "" {
		var err error
		configFile, err = GetDefaultConfigPath()
		if err != nil {
			return err
		}
	}

	c := cmd
	for c != nil {
		switch c.Name() {
		case "config", "version", "endpoints":
			return nil
		}
		c = c.Parent()
	}

	if err := LoadConfig(configFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("capi config file not found at %s. Configure capi with \"capi config create\" first, or set CAPI_USERNAME and CAPI_PASSWORD", configFile)
		}
		return err
	}
	if baseURL != "" {
		GetConfig().BaseURL = baseURL
	}
	return nil
}

// newVersionCmd creates and returns a new version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of capi",
		Run: func(cmd *cobra.Command, args []string) {
			configPath := configFile
			if configPath == "" {
				configPath = "unknown"
			}

			if jsonOutput {
				kv := map[string]string{
					"version":        Version,
					"config_version": ConfigFormatVersion,
					"config_file":    configPath,
				}
				printJSON(cmd.OutOrStdout(), kv)
			} else {
				cmd.Printf("capi %s\n", Version)
				cmd.Printf("Config file: %s\n", configPath)
			}
		},
	}
}

// newEndpointsCmd lists the endpoint catalog known to the client.
func newEndpointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "endpoints",
		Short: "List the API endpoints known to capi",
		Run: func(cmd *cobra.Command, args []string) {
			eps := capi.Endpoints()
			if jsonOutput {
				printJSON(cmd.OutOrStdout(), eps)
				return
			}
			for _, e := range eps {
				access := "token"
				if e.Public {
					access = "public"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-22s %-20v %s\n", e.Path, e.Verbs, access)
			}
		},
	}
}

// printJSON prints the given value as indented JSON
func printJSON(w io.Writer, data any) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(w, string(jsonData))
}
