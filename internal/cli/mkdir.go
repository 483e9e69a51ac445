package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newMkdirCmd creates and returns a new mkdir command
func newMkdirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create a folder hierarchy under the application root",
		Long: `Create every folder along the given path, reusing folders that
already exist. Path segments may reference host environment variables.

Example:
  mber mkdir jobs/integration/7
  mber mkdir 'jobs/{{ .ENV.JOB_NAME }}/{{ .ENV.BUILD_NUMBER }}'`,
		Args: cobra.ExactArgs(1),
		RunE: runMkdir,
	}
}

// runMkdir handles the mkdir command execution
func runMkdir(cmd *cobra.Command, args []string) error {
	path, err := ExpandValue(args[0])
	if err != nil {
		return err
	}

	client, _, err := loadSession()
	if err != nil {
		return err
	}

	resp := client.MakePath(path)
	if !resp.IsSuccess() {
		return reportFailure(client, resp)
	}

	if jsonOutput {
		printJSON(map[string]string{
			"status":      "success",
			"directoryId": resp.String("directoryId"),
		})
	} else {
		okLabel.Printf("✓ Created %s\n", path)
		fmt.Printf("Directory id: %s\n", resp.String("directoryId"))
	}

	return nil
}
