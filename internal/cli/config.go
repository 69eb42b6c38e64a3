package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/celerypayroll/capi/pkg/capi"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default name of the config file
const DefaultConfigFile = "config.yaml"

// Environment variables that override the config file.
const (
	EnvUsername = "CAPI_USERNAME"
	EnvPassword = "CAPI_PASSWORD"
	EnvBaseURL  = "CAPI_BASE_URL"
)

// Config represents the configuration for the capi CLI.
// Values may reference the environment with {{ .ENV.NAME }} placeholders.
type Config struct {
	// Version of the configuration file format
	Version string `yaml:"version" toml:"version" validate:"required,configVersion"`
	// Username and Password authenticate with the API
	Username string `yaml:"username" toml:"username" validate:"required_with=Password"`
	Password string `yaml:"password,omitempty" toml:"password" validate:"required_with=Username"`
	// BaseURL overrides the production endpoint
	BaseURL string `yaml:"base_url,omitempty" toml:"base_url" validate:"omitempty,http_url"`
	// Timeout bounds each attempt of a request
	Timeout time.Duration `yaml:"timeout,omitempty" toml:"timeout" validate:"gte=0"`
	// Retries is the number of retries after a connection failure
	Retries int `yaml:"retries,omitempty" toml:"retries" validate:"gte=0,lte=10"`
	// Language is the default language for accounts
	Language string `yaml:"language,omitempty" toml:"language" validate:"omitempty,bcp47_language_tag"`
}

var config *Config

var configValidator *validator.Validate

func V() *validator.Validate {
	if configValidator == nil {
		configValidator = validator.New(validator.WithRequiredStructEnabled())
		configValidator.RegisterValidation("configVersion", func(fl validator.FieldLevel) bool {
			return IsConfigVersionCompatible(fl.Field().String())
		})
	}
	return configValidator
}

// GetDefaultConfigPath returns the default path for the config file
// It uses the OS-specific config directory (e.g., ~/.config/capi on Linux)
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "capi", DefaultConfigFile), nil
}

// LoadConfig loads the configuration from the specified file. Files ending in
// .toml are read as TOML, everything else as YAML. When the file does not
// exist but credentials are set in the environment, a config is built from
// the environment alone.
func LoadConfig(file string) error {
	if file == "" {
		var err error
		file, err = GetDefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get default config path: %w", err)
		}
	}

	c, err := readConfig(file)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) || os.Getenv(EnvUsername) == "" {
			return err
		}
		c = &Config{Version: ConfigFormatVersion}
	}

	c.applyEnv()
	if err := c.ValidateConfig(); err != nil {
		return err
	}
	config = c
	return nil
}

func readConfig(file string) (*Config, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	expanded, err := PreprocessConfig(raw, filepath.Dir(file))
	if err != nil {
		return nil, fmt.Errorf("unable to expand config file: %w", err)
	}

	var c Config
	if strings.EqualFold(filepath.Ext(file), ".toml") {
		if _, err := toml.Decode(string(expanded), &c); err != nil {
			return nil, fmt.Errorf("unable to parse config file: %w", err)
		}
	} else if err := yaml.Unmarshal(expanded, &c); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}
	return &c, nil
}

func (cfg *Config) applyEnv() {
	if v := os.Getenv(EnvUsername); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv(EnvPassword); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	return config
}

// WriteConfig writes the configuration to the specified file, in TOML when
// the file ends in .toml.
func (cfg *Config) WriteConfig(file string) error {
	if file == "" {
		return errors.New("file path cannot be empty")
	}

	err := os.MkdirAll(filepath.Dir(file), 0700)
	if err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	var out []byte
	if strings.EqualFold(filepath.Ext(file), ".toml") {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return fmt.Errorf("unable to generate configuration: %w", err)
		}
		out = buf.Bytes()
	} else {
		out, err = yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("unable to generate configuration: %w", err)
		}
	}

	if err := os.WriteFile(file, out, 0600); err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}
	return nil
}

// ValidateConfig validates the configuration
func (cfg *Config) ValidateConfig() error {
	if err := V().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			if fe.Tag() == "configVersion" {
				return fmt.Errorf("invalid configuration: config version %q is not supported by capi %s", cfg.Version, Version)
			}
			return fmt.Errorf("invalid configuration: %s failed on %s", strings.ToLower(fe.Field()), fe.Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// GetBaseURL returns the base URL to use, the production endpoint if unset.
func (cfg *Config) GetBaseURL() string {
	if cfg.BaseURL == "" {
		return capi.DefaultBaseURL
	}
	return capi.NormalizeBaseURL(cfg.BaseURL)
}

// Print prints the configuration in a human-readable format
func (cfg *Config) Print(cmd *cobra.Command) {
	cmd.Printf("Version:  %s\n", cfg.Version)
	cmd.Printf("Server:   %s\n", cfg.GetBaseURL())
	cmd.Printf("Username: %s\n", cfg.Username)
	if cfg.Password != "" {
		cmd.Printf("Password: ***\n")
	}
	if cfg.Timeout > 0 {
		cmd.Printf("Timeout:  %s\n", cfg.Timeout)
	}
	if cfg.Retries > 0 {
		cmd.Printf("Retries:  %d\n", cfg.Retries)
	}
	if cfg.Language != "" {
		cmd.Printf("Language: %s\n", cfg.Language)
	}
}

// newConfigCmd creates the config command and its subcommands
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  `Manage CLI configuration settings like the API endpoint and credentials.`,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Write a new configuration file",
		Long: `Write a new configuration file. The password may be a placeholder such as
'{{ .ENV.CAPI_SECRET }}' that is expanded from the environment or a .env file
next to the configuration file each time it is loaded.

Example:
  capi config create --username api-user --password '{{ .ENV.CAPI_SECRET }}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &Config{Version: ConfigFormatVersion}
			cfg.Username, _ = cmd.Flags().GetString("username")
			cfg.Password, _ = cmd.Flags().GetString("password")
			cfg.BaseURL, _ = cmd.Flags().GetString("server")
			cfg.Timeout, _ = cmd.Flags().GetDuration("timeout")
			cfg.Retries, _ = cmd.Flags().GetInt("retries")
			lang, _ := cmd.Flags().GetString("language")
			if lang != "" {
				var err error
				if cfg.Language, err = normalizeLanguage(lang); err != nil {
					return err
				}
			}

			// placeholders are validated after expansion, on load
			check := *cfg
			if strings.Contains(check.Password, "{{") {
				check.Password = "placeholder"
			}
			if err := check.ValidateConfig(); err != nil {
				return err
			}
			if err := cfg.WriteConfig(configFile); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			if jsonOutput {
				printJSON(cmd.OutOrStdout(), map[string]string{
					"server":      cfg.GetBaseURL(),
					"config_file": configFile,
				})
			} else {
				okLabel.Fprintf(cmd.OutOrStdout(), "✓ Configuration written\n")
				cmd.Printf("Server: %s\n", cfg.GetBaseURL())
				cmd.Printf("Config file: %s\n", configFile)
			}
			return nil
		},
	}
	createCmd.Flags().String("username", "", "API username")
	createCmd.Flags().String("password", "", "API password or {{ .ENV.NAME }} placeholder")
	createCmd.Flags().String("server", "", "API base URL (default "+capi.DefaultBaseURL+")")
	createCmd.Flags().Duration("timeout", 0, "Timeout per request attempt")
	createCmd.Flags().Int("retries", 0, "Retries after a connection failure")
	createCmd.Flags().String("language", "", "Default language for new accounts")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := LoadConfig(configFile); err != nil {
				return err
			}
			cfg := *GetConfig()
			if cfg.Password != "" {
				cfg.Password = "***"
			}
			if jsonOutput {
				printJSON(cmd.OutOrStdout(), map[string]any{
					"version":  cfg.Version,
					"server":   cfg.GetBaseURL(),
					"username": cfg.Username,
					"timeout":  cfg.Timeout.String(),
					"retries":  cfg.Retries,
					"language": cfg.Language,
				})
				return nil
			}
			cfg.Print(cmd)
			return nil
		},
	}

	configCmd.AddCommand(createCmd)
	configCmd.AddCommand(showCmd)
	return configCmd
}
