package warpcast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/blacktop/xfeed/internal/logutil"
	"github.com/blacktop/xfeed/internal/social"
)

const (
	// DefaultRootURL is the Warpcast client API.
	DefaultRootURL = "https://client.warpcast.com/v2"

	requestTimeout = 30 * time.Second
	userAgent      = "xfeed/1"
	pageSize       = 25
)

// Client speaks the Warpcast REST API. Every call carries its own bearer
// token so one client can serve several sessions.
type Client struct {
	root string
	http *http.Client
}

// NewClient returns a client for root. A nil httpClient gets a default
// client with a request timeout.
func NewClient(root string, httpClient *http.Client) *Client {
	if strings.TrimSpace(root) == "" {
		root = DefaultRootURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &Client{root: strings.TrimRight(root, "/"), http: httpClient}
}

type apiError struct {
	Message string `json:"message"`
	Reason  string `json:"reason"`
}

type envelope struct {
	Errors []apiError `json:"errors"`
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		u = c.root + "/" + strings.TrimLeft(path, "/")
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do sends body as JSON and decodes the answer into out. Non-2xx answers and
// answers listing errors become social.UpstreamRequestError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, body, out any) error {
	op := method + " " + strings.TrimLeft(path, "/")
	fail := func(status int, msg string, err error) error {
		return social.UpstreamRequestError{
			Platform:   social.PlatformWarpcast,
			Operation:  op,
			StatusCode: status,
			Message:    msg,
			Err:        err,
		}
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fail(0, "", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(resp.StatusCode, "", err)
	}
	logutil.Debugf("warpcast %s: status=%d", op, resp.StatusCode)

	var env envelope
	_ = json.Unmarshal(raw, &env)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := http.StatusText(resp.StatusCode)
		if len(env.Errors) > 0 {
			msg = env.Errors[0].Message
		}
		return fail(resp.StatusCode, msg, nil)
	}
	if len(env.Errors) > 0 {
		return fail(resp.StatusCode, env.Errors[0].Message, nil)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fail(resp.StatusCode, "undecodable response", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, token string, out any) error {
	return c.do(ctx, http.MethodGet, path, query, token, nil, out)
}

func pageQuery(cursor string, kv ...string) url.Values {
	q := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		q.Set(kv[i], kv[i+1])
	}
	q.Set("limit", fmt.Sprint(pageSize))
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	return q
}
