// Package authority is the HTTP client for the node-local replication
// authority, the daemon that knows group-wide replication state. The rest
// of the system asks it two questions: which replica group serves a
// repository, and whether a given object has been replicated within that
// group.
package authority

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/WANdisco/replistore/pkg/object"
)

// ErrNoEndpoint reports that no authority endpoint is configured.
var ErrNoEndpoint = errors.New("no authority endpoint configured")

// KeyType selects how a repository is identified in an object lookup.
type KeyType string

const (
	KeyRepositoryID   KeyType = "repository-id"
	KeyRepositoryName KeyType = "repository-name"
)

// ObjectInfo is the authority's answer about one large object.
type ObjectInfo struct {
	OID            object.ID `json:"oid"`
	Replicated     bool      `json:"replicated"`
	RepositoryID   string    `json:"repository_id"`
	RepositoryName string    `json:"repository_name"`
	GroupID        string    `json:"group_id"`
	Size           int64     `json:"size"`
}

// Endpoint identifies a replication authority endpoint. BaseURL is
// normalized with no trailing slash and no userinfo.
type Endpoint struct {
	Raw     string
	BaseURL string
	user    string
	pass    string
}

// ParseEndpoint parses an authority URL. Only http and https are
// supported; URL userinfo is stripped into Basic auth credentials.
func ParseEndpoint(raw string) (Endpoint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Endpoint{}, ErrNoEndpoint
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, fmt.Errorf("parse authority URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Endpoint{}, fmt.Errorf("authority URL scheme %q not supported", u.Scheme)
	}
	if u.Host == "" {
		return Endpoint{}, fmt.Errorf("authority URL must include a host")
	}

	user := ""
	pass := ""
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}

	normalized := *u
	normalized.User = nil
	normalized.RawQuery = ""
	normalized.Fragment = ""

	return Endpoint{
		Raw:     raw,
		BaseURL: strings.TrimRight(normalized.String(), "/"),
		user:    user,
		pass:    pass,
	}, nil
}

// ClientOptions configures the authority client.
type ClientOptions struct {
	Timeout     time.Duration // HTTP client timeout (default 10s)
	MaxAttempts int           // retry attempts (default 3)
}

const responseLimitInfo = 1 << 20 // 1MB

const headerInstance = "X-Replicator-Instance"

// Client is an HTTP client for one authority endpoint. Every request
// carries this process's instance id so the authority can tell requesters
// apart in its own logs.
//
// Auth resolution order:
// 1) REPLISTORE_TOKEN (Bearer)
// 2) REPLISTORE_USER + REPLISTORE_PASS (Basic)
// 3) URL userinfo (Basic)
type Client struct {
	endpoint    Endpoint
	httpClient  *http.Client
	token       string
	user        string
	pass        string
	maxAttempts int
	instanceID  string
}

// NewClient creates an authority client with default options.
func NewClient(rawURL string) (*Client, error) {
	return NewClientWithOptions(rawURL, ClientOptions{})
}

// NewClientWithOptions creates an authority client. Zero-value or negative
// fields in opts receive defaults.
func NewClientWithOptions(rawURL string, opts ClientOptions) (*Client, error) {
	endpoint, err := ParseEndpoint(rawURL)
	if err != nil {
		return nil, err
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}

	token := strings.TrimSpace(os.Getenv("REPLISTORE_TOKEN"))
	user := strings.TrimSpace(os.Getenv("REPLISTORE_USER"))
	pass := os.Getenv("REPLISTORE_PASS")
	if token == "" && user == "" && endpoint.user != "" {
		user = endpoint.user
		pass = endpoint.pass
	}

	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		token:       token,
		user:        user,
		pass:        pass,
		maxAttempts: opts.MaxAttempts,
		instanceID:  uuid.NewString(),
	}, nil
}

// Endpoint returns the parsed endpoint metadata.
func (c *Client) Endpoint() Endpoint {
	return c.endpoint
}

// LookupObject asks the authority whether id is replicated in the group
// serving the repository identified by repoKey. A nil info with a nil
// error means the authority does not know the object, which callers must
// treat as "not replicated", not as a failure.
func (c *Client) LookupObject(ctx context.Context, repoKey string, kt KeyType, id object.ID) (*ObjectInfo, error) {
	repoKey = strings.TrimSpace(repoKey)
	if repoKey == "" {
		return nil, fmt.Errorf("repository key is required")
	}

	lookupURL := fmt.Sprintf("%s/lfs/objects/%s?key=%s&key_type=%s",
		c.endpoint.BaseURL, string(id), url.QueryEscape(repoKey), url.QueryEscape(string(kt)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, err
	}

	body, status, err := c.doWithLimit(req, responseLimitInfo)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, requestFailed(req, status, body)
	}

	var info ObjectInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("decode object info: %w", err)
	}
	return &info, nil
}

// GroupForRepository resolves the replica group id the authority assigned
// to the named repository.
func (c *Client) GroupForRepository(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("repository name is required")
	}

	groupURL := c.endpoint.BaseURL + "/repositories/" + url.PathEscape(name) + "/group"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, groupURL, nil)
	if err != nil {
		return "", err
	}

	body, status, err := c.doWithLimit(req, responseLimitInfo)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", requestFailed(req, status, body)
	}

	var resp struct {
		GroupID string `json:"group_id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode group response: %w", err)
	}
	return strings.TrimSpace(resp.GroupID), nil
}

// doWithLimit sends the request with auth and retry applied, reads at most
// maxBytes of the response and transparently undoes zstd encoding. The
// status code is returned alongside the body so callers can decide which
// statuses are errors.
func (c *Client) doWithLimit(req *http.Request, maxBytes int64) ([]byte, int, error) {
	req.Header.Set("Accept-Encoding", "zstd")
	c.applyAuth(req)

	resp, err := retryDo(c.httpClient, req, c.maxAttempts)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return nil, 0, err
	}
	if isZstdEncoded(resp.Header.Get("Content-Encoding")) {
		body, err = decompressZstd(body)
		if err != nil {
			return nil, 0, fmt.Errorf("decompress response: %w", err)
		}
	}
	return body, resp.StatusCode, nil
}

func (c *Client) applyAuth(req *http.Request) {
	req.Header.Set(headerInstance, c.instanceID)

	if strings.TrimSpace(c.token) != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
		return
	}
	if strings.TrimSpace(c.user) != "" {
		req.SetBasicAuth(c.user, c.pass)
	}
}

func requestFailed(req *http.Request, status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return fmt.Errorf("authority request failed (%s %s): %s", req.Method, req.URL.Path, msg)
}
