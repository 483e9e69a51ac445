package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

// newUploadCmd creates and returns a new upload command
func newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file into a folder on the service",
		Long: `Upload a file as a document in the given folder. The folder path is
created if it does not exist. Progress is logged while the bytes stream.

Example:
  mber upload results.xml --path jobs/integration/7
  mber upload results.xml --path jobs/integration/7 --name junit.xml --overwrite`,
		Args: cobra.ExactArgs(1),
		RunE: runUpload,
	}

	cmd.Flags().String("path", "", "Folder path to upload into (created if missing)")
	cmd.Flags().String("name", "", "Document name (defaults to the file name)")
	cmd.Flags().StringSlice("tags", nil, "Tags to attach to the document")
	cmd.Flags().Bool("overwrite", false, "Replace an existing document with the same name")
	cmd.MarkFlagRequired("path")
	return cmd
}

// runUpload handles the upload command execution
func runUpload(cmd *cobra.Command, args []string) error {
	file := args[0]

	folder, _ := cmd.Flags().GetString("path")
	folder, err := ExpandValue(folder)
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name = filepath.Base(file)
	}

	tags, _ := cmd.Flags().GetStringSlice("tags")
	for i, tag := range tags {
		if tags[i], err = ExpandValue(tag); err != nil {
			return err
		}
	}

	overwrite, _ := cmd.Flags().GetBool("overwrite")

	client, _, err := loadSession()
	if err != nil {
		return err
	}

	dir := client.MakePath(folder)
	if !dir.IsSuccess() {
		return reportFailure(client, dir)
	}

	resp := client.Upload(file, dir.String("directoryId"), name, tags, overwrite)
	if !resp.IsSuccess() {
		return reportFailure(client, resp)
	}

	if jsonOutput {
		printJSON(map[string]string{
			"status":     "success",
			"documentId": resp.String("documentId"),
		})
	} else {
		okLabel.Printf("✓ Uploaded %s\n", name)
		fmt.Printf("Document id: %s\n", resp.String("documentId"))
	}

	return nil
}
