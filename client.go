package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// encoding is how a service expects its options on the wire.
type encoding int

const (
	encodePath encoding = iota
	encodeQuery
)

func (e encoding) String() string {
	if e == encodeQuery {
		return "query"
	}
	return "path"
}

// service is one remote lorem ipsum generator.
type service struct {
	Name     string
	BaseURL  string
	Encoding encoding
}

const (
	defaultLoripsumURL   = "http://loripsum.net/api"
	defaultMarkdownumURL = "https://jaspervdj.be/lorem-markdownum/markdown.txt"
)

func loripsumService(baseURL string) service {
	return service{Name: "Loripsum", BaseURL: baseURL, Encoding: encodePath}
}

func markdownumService(baseURL string) service {
	return service{Name: "Lorem Markdownum", BaseURL: baseURL, Encoding: encodeQuery}
}

// endpoint joins the base URL with path. Query parameters are only sent to
// query-encoded services; path-encoded ones carry everything in path.
func (s service) endpoint(path string, params url.Values) string {
	u := s.BaseURL + path
	if s.Encoding == encodeQuery && len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// ServiceError is a non-2xx response whose body carried an error message.
type ServiceError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s error response [%d]: %s", e.Service, e.StatusCode, e.Message)
}

// maxStatusBody caps how many runes of a response body a StatusError shows.
const maxStatusBody = 200

// StatusError is a non-2xx response without a structured error body.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if utf8.RuneCountInString(body) > maxStatusBody {
		body = string([]rune(body)[:maxStatusBody]) + "..."
	}
	if body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, body)
}

// Client issues requests to both services over a shared transport.
type Client struct {
	tr         http.RoundTripper
	profile    BrowserProfile
	timeout    time.Duration
	log        zerolog.Logger
	loripsum   service
	markdownum service
}

type clientConfig struct {
	Browser       string
	Timeout       time.Duration
	LoripsumURL   string
	MarkdownumURL string
}

func newClient(cfg clientConfig, log zerolog.Logger) (*Client, error) {
	profile := getProfile(cfg.Browser)
	tr, err := newTransport(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}
	loripsumURL := cfg.LoripsumURL
	if loripsumURL == "" {
		loripsumURL = defaultLoripsumURL
	}
	markdownumURL := cfg.MarkdownumURL
	if markdownumURL == "" {
		markdownumURL = defaultMarkdownumURL
	}
	return &Client{
		tr:         tr,
		profile:    profile,
		timeout:    cfg.Timeout,
		log:        log,
		loripsum:   loripsumService(strings.TrimSuffix(loripsumURL, "/")),
		markdownum: markdownumService(markdownumURL),
	}, nil
}

// request sends one request to svc and returns the body verbatim.
// Transport failures are returned as-is.
func (c *Client) request(ctx context.Context, svc service, method, path string, params url.Values) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target := svc.endpoint(path, params)
	c.log.Debug().
		Str("service", svc.Name).
		Str("method", method).
		Str("url", target).
		Str("profile", c.profile.Name).
		Msg("Sending request")

	start := time.Now()
	resp, body, err := doFetch(ctx, c.tr, c.profile, method, target, nil)
	if err != nil {
		return "", err
	}
	c.log.Debug().
		Str("service", svc.Name).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("Received response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", normalizeError(svc, resp.StatusCode, body)
	}
	return string(body), nil
}

// normalizeError turns a failed response into a ServiceError when the body
// is a JSON object with an "error" field, and a StatusError otherwise.
func normalizeError(svc service, status int, body []byte) error {
	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := errorMessage(payload.Error); msg != "" {
			return &ServiceError{Service: svc.Name, StatusCode: status, Message: msg}
		}
	}
	return &StatusError{StatusCode: status, Body: string(body)}
}

func errorMessage(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
