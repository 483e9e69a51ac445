package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantStatus Status
		wantError  string
	}{
		{
			name:       "success untouched",
			raw:        `{"status":"Success","directoryId":"abc"}`,
			wantStatus: StatusSuccess,
		},
		{
			name:       "missing status becomes failed with raw body as error",
			raw:        `{"directoryId":"abc"}`,
			wantStatus: StatusFailed,
			wantError:  `{"directoryId":"abc"}`,
		},
		{
			name:       "existing error kept",
			raw:        `{"status":"NotAuthorized","error":"invalid_grant"}`,
			wantStatus: StatusNotAuthorized,
			wantError:  "invalid_grant",
		},
		{
			name:       "message renamed to error",
			raw:        `{"status":"Failed","message":"Found 0 bytes"}`,
			wantStatus: StatusFailed,
			wantError:  "Found 0 bytes",
		},
		{
			name:       "invalid field expanded",
			raw:        `{"status":"Failed","invalid":"directoryId"}`,
			wantStatus: StatusFailed,
			wantError:  "Invalid directoryId",
		},
		{
			name:       "leading junk stripped",
			raw:        "while(1);{\"status\":\"Duplicate\",\"error\":\"exists\"}",
			wantStatus: StatusDuplicate,
			wantError:  "exists",
		},
		{
			name:       "unparsable body",
			raw:        "<html>502 Bad Gateway</html>",
			wantStatus: StatusFailed,
			wantError:  "<html>502 Bad Gateway</html>",
		},
		{
			name:       "service-defined status passes through",
			raw:        `{"status":"Throttled","error":"slow down"}`,
			wantStatus: Status("Throttled"),
			wantError:  "slow down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := Normalize(tt.raw)
			assert.Equal(t, tt.wantStatus, env.Status())
			assert.Equal(t, tt.wantError, env.ErrorMessage())
			assert.NotEmpty(t, env.Status())
		})
	}
}

func TestAccessorDefaults(t *testing.T) {
	env := Normalize(`{"status":"Success"}`)
	assert.Equal(t, "", env.String("directoryId"))
	assert.False(t, env.Bool("permanent"))
	assert.Equal(t, int64(0), env.Int("size"))
	assert.False(t, env.Get("result.directories").Exists())
}

func TestConstructors(t *testing.T) {
	assert.True(t, Success().IsSuccess())
	assert.Empty(t, Success().ErrorMessage())

	failed := Failed("it broke")
	assert.True(t, failed.Is(StatusFailed))
	assert.Equal(t, "it broke", failed.ErrorMessage())

	formatted := Failedf("invalid service URL: %s", "ftp://nope")
	assert.Equal(t, "invalid service URL: ftp://nope", formatted.ErrorMessage())
}

func TestWithReturnsCopy(t *testing.T) {
	dup := Normalize(`{"status":"Duplicate","error":"exists"}`)
	resolved := dup.WithStatus(StatusSuccess).With("directoryId", "abc")

	assert.True(t, resolved.IsSuccess())
	assert.Equal(t, "abc", resolved.String("directoryId"))

	// The original envelope is untouched.
	assert.True(t, dup.Is(StatusDuplicate))
	assert.Equal(t, "", dup.String("directoryId"))
}

func TestNestedPayloads(t *testing.T) {
	env := Normalize(`{"status":"Success","result":{"directories":[{"name":"jobs","directoryId":"abc"}]}}`)
	dirs := env.Get("result.directories").Array()
	assert.Len(t, dirs, 1)
	assert.Equal(t, "jobs", dirs[0].Get("name").String())
	assert.Equal(t, "abc", dirs[0].Get("directoryId").String())
}

func TestZeroEnvelope(t *testing.T) {
	var env Envelope
	assert.False(t, env.IsSuccess())
	assert.Equal(t, Status(""), env.Status())
	assert.Equal(t, "{}", env.Raw())
}
