package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var errNoCredentials = errors.New("no credentials configured. Set username and password in the config file or CAPI_USERNAME and CAPI_PASSWORD")

// newLoginCmd creates and returns a new login command
func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check the configured credentials against the API",
		Long: `Authenticate with the API using the credentials from the configuration file
or the CAPI_USERNAME and CAPI_PASSWORD environment variables.

Example:
  capi login
  capi login --show-token`,
		RunE: runLogin,
	}

	cmd.Flags().Bool("show-token", false, "Print the token returned by the API")
	return cmd
}

// runLogin handles the login command execution
func runLogin(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg.Username == "" || cfg.Password == "" {
		return errNoCredentials
	}

	s := newSession()
	if err := s.Authenticate(cmd.Context()); err != nil {
		return err
	}

	showToken, _ := cmd.Flags().GetBool("show-token")
	if jsonOutput {
		kv := map[string]any{
			"status":   "success",
			"username": cfg.Username,
			"server":   s.BaseURL(),
		}
		if showToken {
			kv["token"] = s.Token()
		}
		printJSON(cmd.OutOrStdout(), kv)
		return nil
	}
	okLabel.Fprintf(cmd.OutOrStdout(), "✓ Authenticated as %s\n", cfg.Username)
	cmd.Printf("Server: %s\n", s.BaseURL())
	if showToken {
		cmd.Printf("Token: %s\n", s.Token())
	}
	return nil
}
