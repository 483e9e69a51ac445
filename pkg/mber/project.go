package mber

import "github.com/mber/mber-go/pkg/envelope"

type projectCreateRequest struct {
	Name          string `json:"name"`
	Alias         string `json:"alias"`
	Description   string `json:"description,omitempty"`
	AccessToken   string `json:"access_token"`
	TransactionID string `json:"transactionId"`
}

// MakeProject creates a project, setting the alias to the project name so
// each caller-side project maps one-to-one onto a remote project. On
// Duplicate the existing projects are listed and matched by name; a match
// rewrites the outcome to Success carrying the existing project's id. Any
// Success outcome captures the project id into the session.
func (c *Client) MakeProject(name, description string) envelope.Envelope {
	resp := c.post(epProject, projectCreateRequest{
		Name:          name,
		Alias:         name,
		Description:   description,
		AccessToken:   c.accessToken,
		TransactionID: GenerateTransactionID(),
	})
	if resp.Is(envelope.StatusDuplicate) {
		if id := c.listProjects()[name]; id != "" {
			resp = resp.WithStatus(envelope.StatusSuccess).With("projectId", id)
		}
	}
	if id := resp.String("projectId"); id != "" {
		c.projectID = id
	}
	return resp
}

// listProjects maps each existing project to its id, keyed by alias when
// the project has one and by name otherwise.
func (c *Client) listProjects() map[string]string {
	resp := c.get(epProject, map[string]string{
		"access_token": c.accessToken,
	})
	projects := make(map[string]string)
	for _, item := range resp.Get("results").Array() {
		key := item.Get("alias").String()
		if key == "" {
			key = item.Get("name").String()
		}
		projects[key] = item.Get("projectId").String()
	}
	return projects
}
