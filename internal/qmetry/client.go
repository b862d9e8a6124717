// Package qmetry is a client for the QMetry for Jira (QTM4J) Cloud API.
package qmetry

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const requestTimeout = 30 * time.Second

// Options configures a Client.
type Options struct {
	BaseURL   string
	APIKey    string
	Project   string
	VerifySSL bool
	// CustomFields maps field names to ids and takes precedence over
	// discovery.
	CustomFields map[string]string
	HTTPClient   *http.Client
}

// Client talks to one QMetry project.
type Client struct {
	baseURL      string
	apiKey       string
	project      string
	customFields map[string]string
	http         *http.Client
	cache        Cache
	log          logrus.FieldLogger
}

// APIError is returned for any non-2xx response.
type APIError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// New builds a Client. A nil cache keeps lookups in memory for the life of
// the client.
func New(opts Options, cache Cache, log logrus.FieldLogger) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
		if !opts.VerifySSL {
			transport := http.DefaultTransport.(*http.Transport).Clone()
			// #nosec G402 -- verification is disabled only when QMETRY_SSL_VERIFY is false
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
			httpClient.Transport = transport
		}
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		apiKey:       opts.APIKey,
		project:      opts.Project,
		customFields: opts.CustomFields,
		http:         httpClient,
		cache:        cache,
		log:          log.WithField("component", "qmetry"),
	}
}

// do sends a JSON request and decodes the response into out. Empty bodies
// (including 204 No Content) leave out untouched.
func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values, body, out any) error {
	target := c.baseURL + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("apiKey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.log.WithFields(logrus.Fields{"method": method, "endpoint": endpoint}).Debug("request")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Method:     method,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid JSON response: %w", err)
	}
	return nil
}

func (c *Client) projectPath(suffix string) string {
	return "/projects/" + url.PathEscape(c.project) + suffix
}

// ID is an identifier the API may send as either a string or a number.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// decodeList accepts either a JSON array or a single object.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("invalid JSON response: %w", err)
		}
		return items, nil
	}
	if trimmed[0] != '{' {
		return nil, nil
	}
	var item T
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}
	return []T{item}, nil
}
