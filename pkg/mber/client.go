// Package mber provisions named, hierarchical resources — folders,
// projects, builds, and documents — on the Mber build-tracking service.
// The service's create endpoints are not idempotent: creating a resource
// that already exists reports a conflict instead of returning the existing
// one. This client makes provisioning effectively idempotent by resolving
// conflicts through alias and name lookups, so repeated calls converge on
// the same resource identifiers.
//
// Every operation returns an envelope.Envelope; errors never propagate as
// Go errors past the client boundary. A Client serves one logical unit of
// work sequentially and is not safe for concurrent use.
package mber

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/mber/mber-go/pkg/envelope"
	"github.com/mber/mber-go/pkg/transport"
)

// Service endpoints, relative to the discovered base URL.
const (
	epOAuthToken   = "service/json/oauth/accesstoken"
	epDirectory    = "service/json/data/directory"
	epProject      = "service/json/build/project"
	epBuild        = "service/json/build/build"
	epUpload       = "service/json/data/upload"
	epDocument     = "service/json/data/document"
	epAppEvent     = "service/json/eventstream/appevent"
	epMetricsCount = "service/json/metrics/countovertime"
)

// Client holds the session state for provisioning against one service
// endpoint: credential-derived identifiers, the accumulated build status,
// and the history of every call made. Identifiers are empty until set by a
// successful response and are only ever replaced, never cleared, within a
// session's life.
type Client struct {
	url         string
	application string

	accessToken   string
	applicationID string
	projectID     string
	buildID       string
	buildStatus   []BuildStatus

	rest     *transport.Client
	history  []transport.Call
	progress transport.ProgressFunc
	logger   zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithProgress sets the callback invoked with running byte counts while
// streaming upload bodies.
func WithProgress(fn transport.ProgressFunc) Option {
	return func(c *Client) {
		c.progress = fn
	}
}

// WithLogger sets the logger used for upload progress reporting. Without
// one the client stays silent.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTransportOptions configures the underlying transport client.
func WithTransportOptions(opts transport.ClientOptions) Option {
	return func(c *Client) {
		c.rest = transport.New(opts)
	}
}

// New creates a client for the service at url, provisioning under the
// given application identifier. The identifier may be an alias, a
// service-issued id, or a plain name.
func New(url, application string, opts ...Option) *Client {
	c := &Client{
		url:         url,
		application: application,
		rest:        transport.New(),
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State is the serializable form of a session, used to carry identifiers
// between the setup and teardown phases of a host build.
type State struct {
	URL           string        `json:"url" yaml:"url"`
	Application   string        `json:"application" yaml:"application"`
	AccessToken   string        `json:"access_token" yaml:"access_token"`
	ApplicationID string        `json:"applicationId" yaml:"application_id"`
	ProjectID     string        `json:"projectId" yaml:"project_id"`
	BuildID       string        `json:"buildId" yaml:"build_id"`
	BuildStatus   []BuildStatus `json:"buildStatus" yaml:"build_status"`
}

// FromState restores a client from a previously serialized session. The
// call history starts empty.
func FromState(s State, opts ...Option) *Client {
	c := New(s.URL, s.Application, opts...)
	c.accessToken = s.AccessToken
	c.applicationID = s.ApplicationID
	c.projectID = s.ProjectID
	c.buildID = s.BuildID
	c.buildStatus = append([]BuildStatus(nil), s.BuildStatus...)
	return c
}

// State returns the serializable form of the session.
func (c *Client) State() State {
	return State{
		URL:           c.url,
		Application:   c.application,
		AccessToken:   c.accessToken,
		ApplicationID: c.applicationID,
		ProjectID:     c.projectID,
		BuildID:       c.buildID,
		BuildStatus:   append([]BuildStatus(nil), c.buildStatus...),
	}
}

// URL returns the service endpoint the client was created with.
func (c *Client) URL() string {
	return c.url
}

// Application returns the application identifier in the form used as the
// OAuth client id: aliases and service-issued ids pass through, plain
// names are aliased.
func (c *Client) Application() string {
	if isAlias(c.application) || isUUID(c.application) {
		return c.application
	}
	return toAlias(c.application)
}

// AccessToken returns the token captured by the last successful login.
func (c *Client) AccessToken() string {
	return c.accessToken
}

// ApplicationID returns the application id captured at login.
func (c *Client) ApplicationID() string {
	return c.applicationID
}

// ProjectID returns the project id captured by the last successful project
// creation.
func (c *Client) ProjectID() string {
	return c.projectID
}

// BuildID returns the build id captured by the last successful build
// creation.
func (c *Client) BuildID() string {
	return c.buildID
}

// CallHistory returns every call made through this client since creation
// or the last clear. The returned slice is the client's own log; callers
// must not mutate it.
func (c *Client) CallHistory() []transport.Call {
	return c.history
}

// ClearCallHistory empties the call log. Callers are expected to clear
// between logical units of work to bound memory.
func (c *Client) ClearCallHistory() {
	c.history = nil
}

type loginRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	GrantType     string `json:"grant_type"`
	ClientID      string `json:"client_id"`
	TransactionID string `json:"transactionId"`
}

// Login performs a password-grant login and captures the access token and
// application id into the session. If the first attempt fails and the raw
// application identifier also has the shape of a service-issued id, the
// login is retried once with the aliased form, since an id-shaped string
// can coincidentally be a legitimate alias name. At most two calls are
// made.
func (c *Client) Login(username, password string) envelope.Envelope {
	resp := c.doLogin(username, password, c.Application())
	if resp.IsSuccess() {
		return resp
	}
	if isUUID(c.application) {
		return c.doLogin(username, password, toAlias(c.application))
	}
	return resp
}

func (c *Client) doLogin(username, password, clientID string) envelope.Envelope {
	resp := c.post(epOAuthToken, loginRequest{
		Username:      username,
		Password:      password,
		GrantType:     "password",
		ClientID:      clientID,
		TransactionID: GenerateTransactionID(),
	})
	if token := resp.String("access_token"); token != "" {
		c.accessToken = token
	}
	if id := resp.String("applicationId"); id != "" {
		c.applicationID = id
	}
	return resp
}

// get executes a GET against an endpoint path, records the call, and
// normalizes the response. Transport failures become Failed envelopes.
func (c *Client) get(endpoint string, query map[string]string) envelope.Envelope {
	u, err := BaseURLWithPath(c.url, endpoint)
	if err != nil {
		return envelope.Failed(err.Error())
	}
	call, err := c.rest.Get(u, query)
	if err != nil {
		return envelope.Failed(err.Error())
	}
	c.history = append(c.history, call)
	return envelope.Normalize(call.Body)
}

// post executes a POST with a JSON-marshaled body. See get.
func (c *Client) post(endpoint string, body any) envelope.Envelope {
	u, err := BaseURLWithPath(c.url, endpoint)
	if err != nil {
		return envelope.Failed(err.Error())
	}
	data, err := json.Marshal(body)
	if err != nil {
		return envelope.Failed(err.Error())
	}
	call, err := c.rest.Post(u, data)
	if err != nil {
		return envelope.Failed(err.Error())
	}
	c.history = append(c.history, call)
	return envelope.Normalize(call.Body)
}

// put executes a PUT with a JSON-marshaled body. See get.
func (c *Client) put(endpoint string, body any) envelope.Envelope {
	u, err := BaseURLWithPath(c.url, endpoint)
	if err != nil {
		return envelope.Failed(err.Error())
	}
	data, err := json.Marshal(body)
	if err != nil {
		return envelope.Failed(err.Error())
	}
	call, err := c.rest.Put(u, data)
	if err != nil {
		return envelope.Failed(err.Error())
	}
	c.history = append(c.history, call)
	return envelope.Normalize(call.Body)
}
