package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	jsonOutput bool
	configFile string
	stateFile  string
)

var ErrAlreadyHandled = errors.New("already handled")

var okLabel = color.New(color.FgGreen)
var errorLabel = color.New(color.FgRed)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mber [command] [flags]",
	Short: "Mber CLI - provision build-tracking resources on an Mber service",
	Long: `Mber CLI provisions folders, projects, builds, and documents on an
Mber build-tracking service. Creating a resource that already exists
converges on the existing one, so every command is safe to repeat.

Examples:
  # Log in and store the session
  mber login

  # Create a folder hierarchy
  mber mkdir jobs/integration/7

  # Mark the start and end of a build
  mber build start --project integration --build 7
  mber build finish --result success`,
	PersistentPreRun: preRunHandlePersistents,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "", "", "Path to configuration file to override default")
	rootCmd.PersistentFlags().StringVarP(&stateFile, "state", "", "", "Path to session state file to override default")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newMkdirCmd())
	rootCmd.AddCommand(newUploadCmd())
	rootCmd.AddCommand(newBuildCmd())
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SilenceErrors = true // Prevent Cobra from printing the error
	rootCmd.SilenceUsage = true  // Prevent Cobra from printing usage on error

	err := rootCmd.Execute()
	if err != nil {
		if errors.Is(err, ErrAlreadyHandled) {
			os.Exit(1)
		}
		if jsonOutput {
			kv := map[string]string{
				"error": err.Error(),
			}
			printJSON(kv)
		} else {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// preRunHandlePersistents handles persistent flags and configuration loading before command execution
func preRunHandlePersistents(cmd *cobra.Command, args []string) {
	if configFile == "" {
		var err error
		configFile, err = GetDefaultConfigPath()
		if err != nil {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	skipConfig := false
	c := cmd
	for c != nil {
		if c.Name() == "config" || c.Name() == "version" {
			skipConfig = true
			break
		}
		c = c.Parent()
	}

	if !skipConfig {
		if err := LoadConfig(configFile); err != nil {
			if os.IsNotExist(err) {
				fmt.Println("Mber config file not found. Configure mber with \"mber config\" first.")
				os.Exit(1)
			} else {
				fmt.Printf("%s\n", err.Error())
				os.Exit(1)
			}
		}
	}
}

// newVersionCmd creates and returns a new version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of mber-cli",
		Run: func(cmd *cobra.Command, args []string) {
			configPath, err := GetDefaultConfigPath()
			if err != nil {
				configPath = "unknown"
			}

			if jsonOutput {
				kv := map[string]string{
					"version":     getCLIVersion(),
					"config_file": configPath,
				}
				printJSON(kv)
			} else {
				cmd.Printf("mber CLI %s\n", getCLIVersion())
				cmd.Printf("Config file: %s\n", configPath)
			}
		},
	}
}

// printJSON prints the given map as JSON to stdout
func printJSON(data interface{}) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(jsonData))
}

// getCLIVersion returns the current CLI version
func getCLIVersion() string {
	return "v0.1.0"
}
