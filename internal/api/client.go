// Package api is the typed client of the rescue backend REST surface. All
// calls go through the console's interceptor pipeline.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"rescue-console/internal/model"
	"rescue-console/pkg/apierror"
)

// Authority answers whether the current session may use admin endpoints.
type Authority interface {
	IsAdmin(ctx context.Context) bool
}

type Client struct {
	base      *url.URL
	http      *http.Client
	authority Authority

	Employees  *EmployeeService
	Shifts     *ShiftService
	Urgencies  *UrgencyService
	Activities *ActivityService
	Admin      *AdminService
}

func New(baseURL string, httpClient *http.Client, authority Authority) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q", baseURL)
	}
	if httpClient == nil {
		return nil, fmt.Errorf("api client needs an http client")
	}

	c := &Client{base: base, http: httpClient, authority: authority}
	c.Employees = &EmployeeService{c: c}
	c.Shifts = &ShiftService{c: c}
	c.Urgencies = &UrgencyService{c: c}
	c.Activities = &ActivityService{c: c}
	c.Admin = &AdminService{c: c}

	return c, nil
}

func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

func (c *Client) url(query url.Values, segments ...string) string {
	u := c.base.JoinPath(segments...)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) newRequest(ctx context.Context, method string, target string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do sends the request and decodes a 2xx body into out. Any other status
// comes back as an *apierror.APIError; a 401 has already been seen by the
// pipeline by then.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apierror.FromResponse(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func (c *Client) call(ctx context.Context, method string, target string, body any, out any) error {
	req, err := c.newRequest(ctx, method, target, body)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// pathID rejects identifiers that would change the request path.
func pathID(kind string, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, "/?#") || id == "." || id == ".." {
		return "", fmt.Errorf("%w: %s id %q", model.ErrInvalidInput, kind, id)
	}
	return id, nil
}
