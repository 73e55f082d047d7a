package gds

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Fetcher defines the interface for pulling data from the ground data system.
// This interface is implemented by *Client and can be used for testing.
type Fetcher interface {
	FetchChannels(ctx context.Context) (History[ChannelSample], error)
	FetchEvents(ctx context.Context) (History[EventRecord], error)
	FetchCommands(ctx context.Context) (History[CommandRecord], error)
	FetchLogList(ctx context.Context) (LogList, error)
	FetchLogFile(ctx context.Context, name string) (string, error)
	FetchUplink(ctx context.Context) (FileSet, error)
	FetchDownlink(ctx context.Context) (FileSet, error)
	FetchStats(ctx context.Context) (Stats, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// Client talks to the ground data system's HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	session   string
	limit     int
}

const (
	defaultAPIBind   = "127.0.0.1:5000"
	defaultUserAgent = "kestrel/0.1"
	requestTimeout   = 5 * time.Second

	// defaultFetchLimit matches the server's per-request history cap.
	defaultFetchLimit = 2000
)

// NewClient builds a Client using the provided apiBind host:port value. A
// fresh session key is generated so the server returns only unseen history
// items on each poll.
func NewClient(apiBind string) (*Client, error) {
	base, err := parseBaseURL(apiBind)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		session:   newSessionKey(),
		limit:     defaultFetchLimit,
	}, nil
}

// Session returns the client's session key.
func (c *Client) Session() string {
	if c == nil {
		return ""
	}
	return c.session
}

// FetchChannels retrieves telemetry samples unseen by this session.
func (c *Client) FetchChannels(ctx context.Context) (History[ChannelSample], error) {
	return fetchHistory[ChannelSample](ctx, c, "/channels")
}

// FetchEvents retrieves events unseen by this session.
func (c *Client) FetchEvents(ctx context.Context) (History[EventRecord], error) {
	return fetchHistory[EventRecord](ctx, c, "/events")
}

// FetchCommands retrieves command history entries unseen by this session.
func (c *Client) FetchCommands(ctx context.Context) (History[CommandRecord], error) {
	return fetchHistory[CommandRecord](ctx, c, "/commands")
}

// FetchLogList retrieves the names of server log files.
func (c *Client) FetchLogList(ctx context.Context) (LogList, error) {
	if c == nil {
		return LogList{}, fmt.Errorf("client is nil")
	}
	var payload LogList
	if err := c.do(ctx, http.MethodGet, "/logdata", &payload); err != nil {
		return LogList{}, err
	}
	return payload, nil
}

// FetchLogFile retrieves the body of one server log file. The server keys the
// response object by the requested name.
func (c *Client) FetchLogFile(ctx context.Context, name string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("client is nil")
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("log name required")
	}
	var payload map[string]string
	if err := c.do(ctx, http.MethodGet, "/logdata/"+url.PathEscape(trimmed), &payload); err != nil {
		return "", err
	}
	return payload[trimmed], nil
}

// FetchUplink retrieves the current uplink file set.
func (c *Client) FetchUplink(ctx context.Context) (FileSet, error) {
	return c.fetchFileSet(ctx, "/upload/files")
}

// FetchDownlink retrieves the current downlink file set.
func (c *Client) FetchDownlink(ctx context.Context) (FileSet, error) {
	return c.fetchFileSet(ctx, "/download/files")
}

// FetchStats retrieves the server's statistics blob.
func (c *Client) FetchStats(ctx context.Context) (Stats, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload Stats
	if err := c.do(ctx, http.MethodGet, "/stats", &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) fetchFileSet(ctx context.Context, path string) (FileSet, error) {
	if c == nil {
		return FileSet{}, fmt.Errorf("client is nil")
	}
	var payload FileSet
	if err := c.do(ctx, http.MethodGet, path, &payload); err != nil {
		return FileSet{}, err
	}
	return payload, nil
}

func fetchHistory[T any](ctx context.Context, c *Client, path string) (History[T], error) {
	if c == nil {
		return History[T]{SeenCount: -1}, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	values.Set("session", c.session)
	if c.limit > 0 {
		values.Set("limit", strconv.Itoa(c.limit))
	}
	rel := &url.URL{Path: path, RawQuery: values.Encode()}
	var payload History[T]
	if err := c.doURL(ctx, http.MethodGet, rel, &payload); err != nil {
		return History[T]{SeenCount: -1}, err
	}
	return payload, nil
}

func (c *Client) do(ctx context.Context, method, path string, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.Path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func newSessionKey() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 16)
	}
	return hex.EncodeToString(buf)
}

func parseBaseURL(apiBind string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBind)
	if trimmed == "" {
		trimmed = defaultAPIBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_bind %q: %w", apiBind, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
