package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/mber/mber-go/pkg/envelope"
	"github.com/mber/mber-go/pkg/mber"
)

// getStatePath returns the session state file location, honoring the
// --state flag.
func getStatePath() (string, error) {
	if stateFile != "" {
		return stateFile, nil
	}
	return GetDefaultStatePath()
}

// newClient creates a client for the configured service, logging upload
// progress to stderr.
func newClient(cfg *Config) *mber.Client {
	return mber.New(cfg.ServiceURL, cfg.Application, mber.WithLogger(cliLogger()))
}

// sessionState is the on-disk session: the client's identifiers plus the
// build name chosen at start, which the service needs again on update.
type sessionState struct {
	mber.State `yaml:",inline"`
	BuildName  string `yaml:"build_name,omitempty"`
}

// loadSession restores the client saved by a previous login or build
// start, along with the build name recorded at start.
func loadSession() (*mber.Client, string, error) {
	path, err := getStatePath()
	if err != nil {
		return nil, "", err
	}

	yamlStr, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("unable to read session file (run \"mber login\" first): %w", err)
	}

	var state sessionState
	if err := yaml.Unmarshal(yamlStr, &state); err != nil {
		return nil, "", fmt.Errorf("unable to parse session file: %w", err)
	}

	return mber.FromState(state.State, mber.WithLogger(cliLogger())), state.BuildName, nil
}

// saveSession serializes the client's session next to the config file.
func saveSession(c *mber.Client, buildName string) error {
	path, err := getStatePath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("unable to create state directory: %w", err)
	}

	yamlStr, err := yaml.Marshal(sessionState{State: c.State(), BuildName: buildName})
	if err != nil {
		return fmt.Errorf("unable to serialize session: %w", err)
	}

	if err := os.WriteFile(path, yamlStr, os.FileMode(0600)); err != nil {
		return fmt.Errorf("unable to write session file: %w", err)
	}

	return nil
}

func cliLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

// reportFailure prints a failed outcome along with the calls that led to
// it, and marks the error as already shown. Query strings are stripped
// from the echoed calls since they can carry credentials.
func reportFailure(c *mber.Client, resp envelope.Envelope) error {
	if jsonOutput {
		printJSON(map[string]string{
			"status": string(resp.Status()),
			"error":  resp.ErrorMessage(),
		})
		return ErrAlreadyHandled
	}

	errorLabel.Fprintf(os.Stderr, "✗ %s: %s\n", resp.Status(), resp.ErrorMessage())
	for _, call := range c.CallHistory() {
		fmt.Fprintf(os.Stderr, "  %s %s -> %d\n", call.Method, stripQuery(call.URI), call.Code)
	}
	return ErrAlreadyHandled
}

// stripQuery removes the query string from a request URI.
func stripQuery(uri string) string {
	if i := strings.Index(uri, "?"); i >= 0 {
		return uri[:i]
	}
	return uri
}
