// Package client talks to a running pageutil server. Test harnesses and
// the MCP tools use it to poll the pending registry and resolve strings.
package client

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

	"github.com/pkg/errors"

	"github.com/ziadkadry99/pageutil/internal/catalog"
	"github.com/ziadkadry99/pageutil/internal/pending"
)

// DefaultPollInterval is used by WaitIdle when poll is zero.
const DefaultPollInterval = 100 * time.Millisecond

// Client is an HTTP client for the pageutil API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the server at baseURL, e.g.
// "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Status returns the current pending count and ids.
func (c *Client) Status(ctx context.Context) (pending.Status, error) {
	var st pending.Status
	err := c.do(ctx, http.MethodGet, "/api/pending", nil, &st)
	return st, err
}

// Count returns the number of pending operations.
func (c *Client) Count(ctx context.Context) (int, error) {
	st, err := c.Status(ctx)
	return st.Count, err
}

// Begin registers id as pending and returns the new count.
func (c *Client) Begin(ctx context.Context, id string) (int, error) {
	var st pending.Status
	err := c.do(ctx, http.MethodPost, "/api/pending/"+url.PathEscape(id), nil, &st)
	return st.Count, err
}

// End completes id and returns the resulting count.
func (c *Client) End(ctx context.Context, id string) (int, error) {
	var st pending.Status
	err := c.do(ctx, http.MethodDelete, "/api/pending/"+url.PathEscape(id), nil, &st)
	return st.Count, err
}

// WaitIdle polls the registry every poll until the count reaches zero
// or ctx is done.
func (c *Client) WaitIdle(ctx context.Context, poll time.Duration) error {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		n, err := c.Count(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if n == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// GetString resolves identifier in component. a may be nil, a string, a
// number, a map of keyed values or a json.RawMessage; pass raw JSON to
// keep the key order of an object.
func (c *Client) GetString(ctx context.Context, identifier, component string, a any) (string, error) {
	body, err := json.Marshal(map[string]any{"a": a})
	if err != nil {
		return "", errors.Wrap(err, "encoding substitution")
	}
	var resp catalog.StringResponse
	path := "/api/strings/" + url.PathEscape(component) + "/" + url.PathEscape(identifier)
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return "", err
	}
	return resp.Value, nil
}

// Component fetches the snapshot of every string in component.
func (c *Client) Component(ctx context.Context, component string) (map[string]string, error) {
	var m map[string]string
	err := c.do(ctx, http.MethodGet, "/api/strings/"+url.PathEscape(component), nil, &m)
	return m, err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return errors.Wrapf(err, "building %s %s", method, path)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	return errors.Wrapf(json.NewDecoder(resp.Body).Decode(out), "decoding %s response", path)
}
