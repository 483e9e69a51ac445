package transport

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryString(t *testing.T) {
	tests := []struct {
		name  string
		query map[string]string
		want  string
	}{
		{
			name:  "nil map",
			query: nil,
			want:  "",
		},
		{
			name:  "single entry",
			query: map[string]string{"access_token": "TOKEN"},
			want:  "?access_token=TOKEN",
		},
		{
			name:  "sorted keys",
			query: map[string]string{"b": "2", "a": "1"},
			want:  "?a=1&b=2",
		},
		{
			name:  "empty values dropped",
			query: map[string]string{"a": "1", "b": "", "": "x"},
			want:  "?a=1",
		},
		{
			name:  "percent encoding",
			query: map[string]string{"event name": "a&b"},
			want:  "?event+name=a%26b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, queryString(tt.query))
		})
	}
}

func TestGetRecordsCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, protocolVersion, r.Header.Get(versionHeader))
		assert.Equal(t, "TOKEN", r.URL.Query().Get("access_token"))
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"status":"Success"}`)
	}))
	defer srv.Close()

	c := New()
	call, err := c.Get(srv.URL+"/service/json/data/directory/abc/", map[string]string{"access_token": "TOKEN"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, call.Method)
	assert.Equal(t, http.StatusOK, call.Code)
	assert.Equal(t, `{"status":"Success"}`, call.Body)
	assert.Contains(t, call.URI, "/service/json/data/directory/abc/?access_token=TOKEN")
}

func TestPostSendsJSON(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusNotAcceptable)
		io.WriteString(w, `{"status":"Failed","error":"bad request"}`)
	}))
	defer srv.Close()

	call, err := New().Post(srv.URL+"/", []byte(`{"name":"noodles"}`))
	require.NoError(t, err)

	assert.Equal(t, `{"name":"noodles"}`, string(gotBody))
	assert.Equal(t, jsonContentType, gotContentType)
	assert.Equal(t, http.MethodPost, call.Method)
	assert.Equal(t, http.StatusNotAcceptable, call.Code)
	assert.Equal(t, `{"status":"Failed","error":"bad request"}`, call.Body)
}

func TestPutStream(t *testing.T) {
	payload := strings.Repeat("x", 1024)

	var gotLength int64
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLength = r.ContentLength
		gotBody, _ = io.ReadAll(r.Body)
		assert.Equal(t, binaryContentType, r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var reports [][2]int64
	progress := func(written, total int64) {
		reports = append(reports, [2]int64{written, total})
	}

	call, err := New().PutStream(srv.URL+"/uploads/", strings.NewReader(payload), int64(len(payload)), progress)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, call.Method)
	assert.Equal(t, http.StatusOK, call.Code)
	assert.Equal(t, payload, string(gotBody))
	assert.Equal(t, int64(len(payload)), gotLength)

	// The terminal report always fires, even for payloads below the
	// reporting interval.
	require.NotEmpty(t, reports)
	last := reports[len(reports)-1]
	assert.Equal(t, int64(len(payload)), last[0])
	assert.Equal(t, int64(len(payload)), last[1])
}

func TestRequestFailure(t *testing.T) {
	_, err := New().Get("http://127.0.0.1:1/unreachable/", nil)
	assert.Error(t, err)
}

func TestProgressReaderInterval(t *testing.T) {
	total := int64(progressInterval*2 + 512)
	src := io.LimitReader(neverEnding('x'), total)

	var reports []int64
	pr := newProgressReader(src, total, func(written, _ int64) {
		reports = append(reports, written)
	})

	n, err := io.Copy(io.Discard, pr)
	require.NoError(t, err)
	assert.Equal(t, total, n)

	// At least one interim report plus the terminal one.
	require.GreaterOrEqual(t, len(reports), 2)
	assert.Equal(t, total, reports[len(reports)-1])
	for _, w := range reports[:len(reports)-1] {
		assert.GreaterOrEqual(t, w, int64(progressInterval))
	}
}

// neverEnding is an infinite reader of one repeated byte.
type neverEnding byte

func (b neverEnding) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(b)
	}
	return len(p), nil
}

func TestDelete(t *testing.T) {
	var gotMethod, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.RawQuery
		io.WriteString(w, `{"status":"Success"}`)
	}))
	defer srv.Close()

	call, err := New().Delete(srv.URL+"/service/json/build/project/abc/", map[string]string{"access_token": "TOKEN"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "access_token=TOKEN", gotQuery)
	assert.Equal(t, http.StatusOK, call.Code)
}

func TestPutSendsJSON(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPut, r.Method)
		io.WriteString(w, `{"status":"Success"}`)
	}))
	defer srv.Close()

	call, err := New().Put(srv.URL+"/", []byte(`{"buildId":"abc"}`))
	require.NoError(t, err)
	assert.True(t, bytes.Equal([]byte(`{"buildId":"abc"}`), gotBody))
	assert.Equal(t, http.StatusOK, call.Code)
}
