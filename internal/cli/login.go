package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newLoginCmd creates and returns a new login command
func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the Mber service",
		Long: `Login to the Mber service and store the session in the state file.
Later commands (mkdir, upload, build) reuse the stored session.

Example:
  mber login --passwd=mypassword
  mber login  # uses credentials from the config file`,
		RunE: runLogin,
	}

	cmd.Flags().String("user", "", "Username for authentication")
	cmd.Flags().String("passwd", "", "Password for authentication")
	return cmd
}

// runLogin handles the login command execution
func runLogin(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("no configuration loaded")
	}

	user, _ := cmd.Flags().GetString("user")
	if user == "" {
		user = cfg.Username
		if user == "" {
			return fmt.Errorf("no username provided. Use --user flag or set username in config file")
		}
	}
	passwd, _ := cmd.Flags().GetString("passwd")
	if passwd == "" {
		passwd = cfg.Password
		if passwd == "" {
			return fmt.Errorf("no password provided. Use --passwd flag or set password in config file")
		}
	}

	client := newClient(cfg)
	resp := client.Login(user, passwd)
	if !resp.IsSuccess() {
		return reportFailure(client, resp)
	}

	if err := saveSession(client, ""); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	if jsonOutput {
		kv := map[string]string{
			"status":        "success",
			"applicationId": client.ApplicationID(),
		}
		printJSON(kv)
	} else {
		okLabel.Println("✓ Login successful")
		fmt.Printf("Application id: %s\n", client.ApplicationID())
	}

	return nil
}
