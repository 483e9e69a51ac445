package mber

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/mber/mber-go/pkg/envelope"
)

const projectPath = "/" + epProject + "/"

func TestMakeProject(t *testing.T) {
	svc := newStubService(t, func(req recordedRequest) (int, string) {
		if req.Method == "POST" && req.Path == projectPath {
			return 200, `{"status":"Success","projectId":"` + testProjectID + `"}`
		}
		return 404, `{"status":"NotFound"}`
	})
	c := loggedInClient(svc.URL())

	resp := c.MakeProject("integration", "nightly integration builds")
	require.True(t, resp.IsSuccess())
	assert.Equal(t, testProjectID, resp.String("projectId"))
	assert.Equal(t, testProjectID, c.ProjectID())

	body := svc.lastRequest(t, projectPath).Body
	assert.Equal(t, "integration", gjson.Get(body, "name").String())
	assert.Equal(t, "integration", gjson.Get(body, "alias").String())
	assert.Equal(t, "nightly integration builds", gjson.Get(body, "description").String())
	assert.Equal(t, testToken, gjson.Get(body, "access_token").String())
	assert.Len(t, gjson.Get(body, "transactionId").String(), 24)
}

func TestMakeProjectOmitsEmptyDescription(t *testing.T) {
	svc := newStubService(t, func(req recordedRequest) (int, string) {
		return 200, `{"status":"Success","projectId":"` + testProjectID + `"}`
	})
	c := loggedInClient(svc.URL())

	require.True(t, c.MakeProject("integration", "").IsSuccess())
	body := svc.lastRequest(t, projectPath).Body
	assert.False(t, gjson.Get(body, "description").Exists())
}

func TestMakeProjectDuplicateResolvedByName(t *testing.T) {
	svc := newStubService(t, func(req recordedRequest) (int, string) {
		switch req.Method {
		case "POST":
			return 409, `{"status":"Duplicate","error":"alias taken"}`
		case "GET":
			return 200, `{"status":"Success","results":[` +
				`{"name":"other","alias":"other","projectId":"PROJECTID_OTHER_AAAAAA"},` +
				`{"name":"integration","alias":"integration","projectId":"` + testProjectID + `"}]}`
		}
		return 404, `{"status":"NotFound"}`
	})
	c := loggedInClient(svc.URL())

	resp := c.MakeProject("integration", "")
	require.True(t, resp.IsSuccess())
	assert.Equal(t, testProjectID, resp.String("projectId"))
	assert.Equal(t, testProjectID, c.ProjectID())
	assert.Len(t, svc.requests, 2)
}

func TestMakeProjectDuplicateFallsBackToName(t *testing.T) {
	// Projects created before aliasing existed list with no alias; the
	// name keys the match instead.
	svc := newStubService(t, func(req recordedRequest) (int, string) {
		switch req.Method {
		case "POST":
			return 409, `{"status":"Duplicate","error":"alias taken"}`
		case "GET":
			return 200, `{"status":"Success","results":[` +
				`{"name":"integration","projectId":"` + testProjectID + `"}]}`
		}
		return 404, `{"status":"NotFound"}`
	})
	c := loggedInClient(svc.URL())

	resp := c.MakeProject("integration", "")
	require.True(t, resp.IsSuccess())
	assert.Equal(t, testProjectID, resp.String("projectId"))
}

func TestMakeProjectUnresolvedDuplicate(t *testing.T) {
	svc := newStubService(t, func(req recordedRequest) (int, string) {
		if req.Method == "POST" {
			return 409, `{"status":"Duplicate","error":"alias taken"}`
		}
		return 200, `{"status":"Success","results":[]}`
	})
	c := loggedInClient(svc.URL())

	resp := c.MakeProject("integration", "")
	assert.True(t, resp.Is(envelope.StatusDuplicate))
	assert.Empty(t, c.ProjectID())
}

func TestMakeProjectFailureLeavesSessionUntouched(t *testing.T) {
	svc := newStubService(t, func(req recordedRequest) (int, string) {
		return 500, `{"status":"Failed","error":"storage offline"}`
	})
	c := loggedInClient(svc.URL())
	c.projectID = "PROJECTID_OTHER_AAAAAA"

	resp := c.MakeProject("integration", "")
	assert.True(t, resp.Is(envelope.StatusFailed))
	assert.Equal(t, "PROJECTID_OTHER_AAAAAA", c.ProjectID())
}
