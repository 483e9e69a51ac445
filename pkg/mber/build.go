package mber

import "github.com/mber/mber-go/pkg/envelope"

// BuildStatus is a flag describing a build's lifecycle state. A build
// carries an array of flags rather than a single value, so a completed
// build is, for example, both Completed and Success.
type BuildStatus string

const (
	BuildRunning   BuildStatus = "RUNNING"
	BuildCompleted BuildStatus = "COMPLETED"
	BuildSuccess   BuildStatus = "SUCCESS"
	BuildFailure   BuildStatus = "FAILURE"
	BuildAborted   BuildStatus = "ABORTED"
)

type buildCreateRequest struct {
	Name          string        `json:"name"`
	Alias         string        `json:"alias"`
	Description   string        `json:"description,omitempty"`
	Status        []BuildStatus `json:"status"`
	ProjectID     string        `json:"projectId"`
	AccessToken   string        `json:"access_token"`
	TransactionID string        `json:"transactionId"`
}

// MakeBuild creates a build under the session's project. The alias is the
// caller's own build identifier, mapping caller builds one-to-one onto
// remote builds. The given statuses are folded into the session's
// accumulated status array before submitting. Success captures the build
// id into the session.
func (c *Client) MakeBuild(name, description, alias string, statuses ...BuildStatus) envelope.Envelope {
	c.recordBuildStatus(statuses)
	resp := c.post(epBuild, buildCreateRequest{
		Name:          name,
		Alias:         alias,
		Description:   description,
		Status:        c.buildStatusList(),
		ProjectID:     c.projectID,
		AccessToken:   c.accessToken,
		TransactionID: GenerateTransactionID(),
	})
	if id := resp.String("buildId"); id != "" {
		c.buildID = id
	}
	return resp
}

// UpdateBuild updates the name and description of the build held in the
// session, folding the given statuses into the accumulated status array
// first. It fails locally when no build id is held.
func (c *Client) UpdateBuild(name, description string, statuses ...BuildStatus) envelope.Envelope {
	c.recordBuildStatus(statuses)
	fields := map[string]any{"name": name}
	if description != "" {
		fields["description"] = description
	}
	return c.updateBuild(fields)
}

// SetBuildDirectory attaches a directory to the build held in the session.
func (c *Client) SetBuildDirectory(directoryID string) envelope.Envelope {
	return c.updateBuild(map[string]any{
		"directoryIds": []string{directoryID},
	})
}

// updateBuild submits a build update. The accumulated status array is
// always resubmitted alongside whatever fields the caller is changing.
func (c *Client) updateBuild(fields map[string]any) envelope.Envelope {
	if c.buildID == "" {
		return envelope.Failed("no build held in session; create a build first")
	}
	fields["buildId"] = c.buildID
	fields["status"] = c.buildStatusList()
	fields["access_token"] = c.accessToken
	fields["transactionId"] = GenerateTransactionID()
	return c.put(epBuild+"/"+c.buildID, fields)
}

// recordBuildStatus folds flags into the session's accumulated status
// array, skipping flags already present.
func (c *Client) recordBuildStatus(statuses []BuildStatus) {
	for _, s := range statuses {
		seen := false
		for _, held := range c.buildStatus {
			if held == s {
				seen = true
				break
			}
		}
		if !seen {
			c.buildStatus = append(c.buildStatus, s)
		}
	}
}

// buildStatusList returns the accumulated status array, never nil, so the
// submitted JSON always carries an array.
func (c *Client) buildStatusList() []BuildStatus {
	if c.buildStatus == nil {
		return []BuildStatus{}
	}
	return c.buildStatus
}
