// Package supabase reads collections through a Supabase project's
// PostgREST endpoint.
package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hamed0406/storeprobe/internal/domain"
)

const restPath = "/rest/v1/"

type Client struct {
	base       *url.URL
	credential string
	HTTP       *http.Client
}

// New validates its arguments and returns a client. No request is made.
func New(endpoint, credential string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("endpoint %q: scheme must be http or https", endpoint)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("endpoint %q: missing host", endpoint)
	}
	if credential == "" {
		return nil, errors.New("credential is empty")
	}
	return &Client{
		base:       u,
		credential: credential,
		HTTP:       &http.Client{Timeout: timeout},
	}, nil
}

// APIError is a non-2xx answer from PostgREST. Message carries the
// server's own wording so it can be shown to the operator unchanged.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Hint       string
}

func (e *APIError) Error() string {
	return e.Message
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint"`
}

func (c *Client) Query(ctx context.Context, collection string, limit int) ([]domain.Record, error) {
	u := *c.base
	u.Path = c.base.Path + restPath + url.PathEscape(collection)
	q := url.Values{}
	q.Set("select", "*")
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.credential)
	req.Header.Set("Authorization", "Bearer "+c.credential)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, decodeError(resp)
	}

	var out []domain.Record
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", collection, err)
	}
	return out, nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var eb errorBody
	if json.Unmarshal(body, &eb) == nil && eb.Message != "" {
		apiErr.Code, apiErr.Message, apiErr.Hint = eb.Code, eb.Message, eb.Hint
		return apiErr
	}
	apiErr.Message = resp.Status
	if s := strings.TrimSpace(string(body)); s != "" && len(s) < 200 {
		apiErr.Message += ": " + s
	}
	return apiErr
}
