package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mber/mber-go/pkg/mber"
)

// newBuildCmd creates and returns the build command group
func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Mark the start and end of a host build",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	cmd.AddCommand(newBuildStartCmd())
	cmd.AddCommand(newBuildFinishCmd())
	return cmd
}

func newBuildStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Log in and create a running build under a project",
		Long: `Log in, create the project and a running build under it, and store
the session in the state file for "mber build finish".

Example:
  mber build start --project integration --build 7
  mber build start --project '{{ .ENV.JOB_NAME }}' --build '{{ .ENV.BUILD_NUMBER }}'`,
		RunE: runBuildStart,
	}

	cmd.Flags().String("project", "", "Project name")
	cmd.Flags().String("build", "", "Build name; also used as the build alias")
	cmd.Flags().String("description", "", "Build description")
	cmd.MarkFlagRequired("project")
	cmd.MarkFlagRequired("build")
	return cmd
}

func newBuildFinishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finish",
		Short: "Mark the session's build completed",
		Long: `Restore the session saved by "mber build start" and mark its build
completed. A test-result summary can be published alongside, and a report
file uploaded into a folder attached to the build.

Example:
  mber build finish --result success
  mber build finish --result failure --tests summary.json --report results.xml --path jobs/integration/7`,
		RunE: runBuildFinish,
	}

	cmd.Flags().String("result", "", "Build outcome: success, failure, or aborted")
	cmd.Flags().String("build", "", "Build name (defaults to the name given at start)")
	cmd.Flags().String("tests", "", "JSON test-result summary file to publish")
	cmd.Flags().String("report", "", "Report file to upload")
	cmd.Flags().String("path", "", "Folder path for the report upload")
	cmd.MarkFlagRequired("result")
	return cmd
}

// runBuildStart handles the build start command execution
func runBuildStart(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("no configuration loaded")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return fmt.Errorf("username and password must be set in the config file")
	}

	project, _ := cmd.Flags().GetString("project")
	build, _ := cmd.Flags().GetString("build")
	description, _ := cmd.Flags().GetString("description")

	var err error
	if project, err = ExpandValue(project); err != nil {
		return err
	}
	if build, err = ExpandValue(build); err != nil {
		return err
	}

	client := newClient(cfg)
	if resp := client.Login(cfg.Username, cfg.Password); !resp.IsSuccess() {
		return reportFailure(client, resp)
	}
	if resp := client.MakeProject(project, ""); !resp.IsSuccess() {
		return reportFailure(client, resp)
	}
	resp := client.MakeBuild(build, description, project+"-"+build, mber.BuildRunning)
	if !resp.IsSuccess() {
		return reportFailure(client, resp)
	}

	if err := saveSession(client, build); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]string{
			"status":    "success",
			"projectId": client.ProjectID(),
			"buildId":   client.BuildID(),
		})
	} else {
		okLabel.Printf("✓ Build started\n")
		fmt.Printf("Project id: %s\n", client.ProjectID())
		fmt.Printf("Build id: %s\n", client.BuildID())
	}

	return nil
}

// runBuildFinish handles the build finish command execution
func runBuildFinish(cmd *cobra.Command, args []string) error {
	result, _ := cmd.Flags().GetString("result")
	var outcome mber.BuildStatus
	switch result {
	case "success":
		outcome = mber.BuildSuccess
	case "failure":
		outcome = mber.BuildFailure
	case "aborted":
		outcome = mber.BuildAborted
	default:
		return fmt.Errorf("invalid result %q: must be success, failure, or aborted", result)
	}

	client, savedName, err := loadSession()
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("build")
	if name == "" {
		name = savedName
	}
	if name == "" {
		name = client.BuildID()
	}
	resp := client.UpdateBuild(name, "", mber.BuildCompleted, outcome)
	if !resp.IsSuccess() {
		return reportFailure(client, resp)
	}

	if report, _ := cmd.Flags().GetString("report"); report != "" {
		folder, _ := cmd.Flags().GetString("path")
		if folder == "" {
			return fmt.Errorf("--path is required with --report")
		}
		if folder, err = ExpandValue(folder); err != nil {
			return err
		}
		dir := client.MakePath(folder)
		if !dir.IsSuccess() {
			return reportFailure(client, dir)
		}
		if resp := client.SetBuildDirectory(dir.String("directoryId")); !resp.IsSuccess() {
			return reportFailure(client, resp)
		}
		up := client.Upload(report, dir.String("directoryId"), filepath.Base(report), nil, true)
		if !up.IsSuccess() {
			return reportFailure(client, up)
		}
	}

	if tests, _ := cmd.Flags().GetString("tests"); tests != "" {
		summary, err := os.ReadFile(tests)
		if err != nil {
			return fmt.Errorf("unable to read test summary: %w", err)
		}
		if resp := client.PublishTestResults(summary); !resp.IsSuccess() {
			return reportFailure(client, resp)
		}
	}

	if err := saveSession(client, name); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]string{
			"status":  "success",
			"buildId": client.BuildID(),
		})
	} else {
		okLabel.Printf("✓ Build finished: %s\n", result)
	}

	return nil
}
