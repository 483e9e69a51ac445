package mber

import (
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"github.com/mber/mber-go/pkg/envelope"
)

// testCountKeys are the count fields recognized in a test-result summary,
// in submission order.
var testCountKeys = []string{"failCount", "skipCount", "passCount", "totalCount"}

type countField struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type appEventRequest struct {
	Name          string       `json:"name"`
	Data          string       `json:"data"`
	ApplicationID string       `json:"applicationId"`
	HistoricalIDs []string     `json:"historicalIds"`
	CountFields   []countField `json:"countFields"`
	Permanent     bool         `json:"permanent"`
	AccessToken   string       `json:"access_token"`
}

// BuildCountSince queries how many events named under the test-event
// namespace were created since the given time, counted in minutes.
func (c *Client) BuildCountSince(name string, since time.Time) envelope.Envelope {
	return c.get(epMetricsCount, map[string]string{
		"eventName":    "AppEvent.tests." + name,
		"eventType":    "CREATE",
		"timeUnit":     "MINUTES",
		"startDate":    strconv.FormatInt(since.UnixMilli(), 10),
		"access_token": c.accessToken,
	})
}

// PublishTestResults publishes a test-result summary as a permanent
// aggregated event linked to the session's build. summary is a JSON object
// whose recognized count keys (failCount, skipCount, passCount,
// totalCount) each become one count-field entry; absent keys are skipped.
func (c *Client) PublishTestResults(summary []byte) envelope.Envelope {
	var counts []countField
	for _, key := range testCountKeys {
		if v := gjson.GetBytes(summary, key); v.Exists() {
			counts = append(counts, countField{Name: key, Count: v.Int()})
		}
	}

	return c.post(epAppEvent, appEventRequest{
		Name:          "tests",
		Data:          c.buildID,
		ApplicationID: c.applicationID,
		HistoricalIDs: []string{c.buildID},
		CountFields:   counts,
		Permanent:     true,
		AccessToken:   c.accessToken,
	})
}
