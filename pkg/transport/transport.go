// Package transport executes single HTTP calls against the Mber service.
// Each operation opens one request, attaches the protocol-version header,
// reads the full response body, and returns a Call record describing what
// happened on the wire. It makes no retry, caching, or error-recovery
// decisions; those belong to the provisioning client.
package transport

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

const (
	versionHeader   = "REST-API-Version"
	protocolVersion = "0.1.x"

	jsonContentType   = "application/json; charset=utf-8"
	binaryContentType = "application/octet-stream"
)

// Call records one executed HTTP call: the method, the resolved URI
// including any query string, the response status code, and the response
// body as UTF-8 text. Calls are append-only history entries and are never
// mutated after creation.
type Call struct {
	Method string
	URI    string
	Code   int
	Body   string
}

// Client executes HTTP calls. The zero-value-like client returned by New
// is ready for use; one Client may be shared by sequential operations.
type Client struct {
	httpClient *http.Client
}

// ClientOptions contains options for configuring the transport client.
type ClientOptions struct {
	DisableCertValidation bool // If true, skips SSL certificate validation
}

// New creates a transport client. Options may be supplied to relax TLS
// verification for self-signed development endpoints.
func New(opts ...ClientOptions) *Client {
	clientOpts := ClientOptions{}
	if len(opts) > 0 {
		clientOpts = opts[0]
	}

	httpClient := &http.Client{}
	if clientOpts.DisableCertValidation {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
		}
	}

	return &Client{httpClient: httpClient}
}

// Get issues a GET to the given URL. Query parameters are appended as a
// percent-encoded query string; entries with an empty key or value are
// dropped.
func (c *Client) Get(rawURL string, query map[string]string) (Call, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL+queryString(query), nil)
	if err != nil {
		return Call{}, fmt.Errorf("failed to create request: %w", err)
	}
	return c.execute(req)
}

// Delete issues a DELETE to the given URL with optional query parameters.
func (c *Client) Delete(rawURL string, query map[string]string) (Call, error) {
	req, err := http.NewRequest(http.MethodDelete, rawURL+queryString(query), nil)
	if err != nil {
		return Call{}, fmt.Errorf("failed to create request: %w", err)
	}
	return c.execute(req)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(rawURL string, body []byte) (Call, error) {
	req, err := http.NewRequest(http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return Call{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", jsonContentType)
	return c.execute(req)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(rawURL string, body []byte) (Call, error) {
	req, err := http.NewRequest(http.MethodPut, rawURL, bytes.NewReader(body))
	if err != nil {
		return Call{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", jsonContentType)
	return c.execute(req)
}

// PutStream issues a PUT whose body is streamed from r as an octet stream.
// size is the expected total byte count and is sent as the content length.
// If progress is non-nil it is invoked with the running byte count at a
// fixed interval and once more when the stream is exhausted.
func (c *Client) PutStream(rawURL string, r io.Reader, size int64, progress ProgressFunc) (Call, error) {
	body := newProgressReader(r, size, progress)
	req, err := http.NewRequest(http.MethodPut, rawURL, body)
	if err != nil {
		return Call{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", binaryContentType)
	return c.execute(req)
}

// execute runs the request and drains the response. The response body is
// closed on every exit path.
func (c *Client) execute(req *http.Request) (Call, error) {
	req.Header.Set(versionHeader, protocolVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Call{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Call{}, fmt.Errorf("failed to read response body: %w", err)
	}

	return Call{
		Method: req.Method,
		URI:    req.URL.String(),
		Code:   resp.StatusCode,
		Body:   string(body),
	}, nil
}

// queryString renders query as "?key=value&..." with both keys and values
// percent-encoded. Entries whose key or value is empty are skipped. Keys
// are emitted in sorted order so recorded URIs are deterministic.
func queryString(query map[string]string) string {
	keys := make([]string, 0, len(query))
	for k, v := range query {
		if k == "" || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i == 0 {
			sb.WriteByte('?')
		} else {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(k))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(query[k]))
	}
	return sb.String()
}
