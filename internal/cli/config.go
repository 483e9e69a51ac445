package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default name of the config file
const DefaultConfigFile = "config.yaml"

// DefaultStateFile is the default name of the session state file
const DefaultStateFile = "session.yaml"

// Config represents the configuration for the Mber CLI.
// Values may reference environment variables as {{ .ENV.NAME }}; they are
// expanded when the file is loaded, so credentials can stay out of the
// file itself.
type Config struct {
	// Version of the configuration file format
	Version string `yaml:"version"`
	// ServiceURL is the URL of the Mber service
	ServiceURL string `yaml:"service_url"`
	// Application is the application alias, id, or name to provision under
	Application string `yaml:"application"`
	// Username is the account used for password-grant logins
	Username string `yaml:"username"`
	// Password is the password for authentication (stored for convenience)
	Password string `yaml:"password"`
}

var config *Config

// GetDefaultConfigPath returns the default path for the config file
// It uses the OS-specific config directory (e.g., ~/.config/mber on Linux)
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "mber", DefaultConfigFile), nil
}

// GetDefaultStatePath returns the default path for the session state file,
// next to the config file.
func GetDefaultStatePath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "mber", DefaultStateFile), nil
}

// LoadConfig loads the configuration from the specified file
// If no file is specified, it uses the default config location
func LoadConfig(file string) error {
	if file == "" {
		var err error
		file, err = GetDefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get default config path: %w", err)
		}
	}

	yamlStr, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("unable to read config file: %w", err)
	}

	yamlStr, err = PreprocessYAML(yamlStr)
	if err != nil {
		return fmt.Errorf("unable to expand config file: %w", err)
	}

	var c Config
	if err = yaml.Unmarshal(yamlStr, &c); err != nil {
		return fmt.Errorf("unable to parse config file: %w", err)
	}

	if c.ServiceURL == "" {
		return errors.New("service_url is required")
	}
	if c.Application == "" {
		return errors.New("application is required")
	}

	c.ServiceURL = MorphServiceURL(c.ServiceURL)

	config = &c
	return nil
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	return config
}

// WriteConfig writes the current configuration to the specified file
func (cfg *Config) WriteConfig(file string) error {
	if file == "" {
		return errors.New("file path cannot be empty")
	}

	err := os.MkdirAll(filepath.Dir(file), os.ModePerm)
	if err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	yamlStr, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("unable to generate configuration: %w", err)
	}

	err = os.WriteFile(file, yamlStr, os.FileMode(0600))
	if err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}

	return nil
}

// MorphServiceURL ensures the service URL is properly formatted
// Adds https:// prefix if missing and removes trailing slashes
func MorphServiceURL(service string) string {
	if service == "" {
		return service
	}

	// Remove any trailing slashes
	service = strings.TrimRight(service, "/")

	// Add https:// if no protocol is specified
	if !strings.HasPrefix(service, "http://") && !strings.HasPrefix(service, "https://") {
		service = "https://" + service
	}

	return service
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long:  `Manage CLI configuration settings like service connection and credentials.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		serviceFlag, _ := cmd.Flags().GetString("service")
		applicationFlag, _ := cmd.Flags().GetString("application")
		if serviceFlag != "" {
			return setServiceConfig(serviceFlag, applicationFlag)
		}

		cmd.Help()
		return nil
	},
}

func init() {
	configCmd.Flags().String("service", "", "Set the service URL (e.g., https://member.firepoppy.com)")
	configCmd.Flags().String("application", "", "Set the application alias or id to provision under")

	rootCmd.AddCommand(configCmd)
}

// setServiceConfig writes a fresh config file pointing at the given service
func setServiceConfig(service, application string) error {
	configPath := configFile
	if configPath == "" {
		var err error
		configPath, err = GetDefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get default config path: %w", err)
		}
	}

	cfg := &Config{
		Version:     "0.1.0",
		ServiceURL:  MorphServiceURL(service),
		Application: application,
	}

	if err := cfg.WriteConfig(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]string{
			"service":     cfg.ServiceURL,
			"config_file": configPath,
		})
	} else {
		fmt.Printf("Service configured: %s\n", cfg.ServiceURL)
		fmt.Printf("Config file: %s\n", configPath)
	}

	return nil
}
