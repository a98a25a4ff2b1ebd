// Package vision talks to the external text-recognition service. The
// orchestrator treats the capability as opaque; this package owns the wire
// format and classifies failures as transient or permanent so callers can
// decide what to retry.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout = 60 * time.Second
	defaultMaxTokens   = 4096
	apiVersion         = "2023-06-01"
)

// Capability is the recognition service boundary: one recognized string per
// crop, positionally aligned with the input order.
type Capability interface {
	Recognize(ctx context.Context, crops []image.Image, hints FewShot) ([]string, error)
}

// Config captures the runtime settings required to talk to the service.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client implements Capability against the Anthropic messages API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a recognition client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			Model:          strings.TrimSpace(cfg.Model),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = "https://api.anthropic.com/v1/messages"
	}
	return client
}

type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("recognition request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// IsTransient reports whether the error is worth retrying: timeouts, rate
// limiting, and server-side failures. Anything else (bad request, auth
// failure, undecodable payload) is permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= http.StatusInternalServerError:
			return true
		default:
			return false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Timeout()
	}
	return false
}

// RetryAfter extracts the server-advertised retry delay, if the error
// carries one.
func RetryAfter(err error) (time.Duration, bool) {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) && statusErr.RetryAfter > 0 {
		return statusErr.RetryAfter, true
	}
	return 0, false
}

type messageRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Recognize sends the crops in one request and returns one string per crop.
// Crops the model reports as EMPTY come back as "". The call is a single
// attempt; retry policy lives with the caller.
func (c *Client) Recognize(ctx context.Context, crops []image.Image, hints FewShot) ([]string, error) {
	if len(crops) == 0 {
		return nil, nil
	}
	if c.cfg.APIKey == "" {
		return nil, errors.New("recognize: api key required")
	}

	content := make([]contentBlock, 0, 2*len(crops)+1)
	for i, crop := range crops {
		encoded, err := encodePNG(crop)
		if err != nil {
			return nil, fmt.Errorf("recognize: encode crop %d: %w", i, err)
		}
		content = append(content,
			contentBlock{Type: "text", Text: "[" + strconv.Itoa(i) + "]"},
			contentBlock{Type: "image", Source: &imageSource{Type: "base64", MediaType: "image/png", Data: encoded}},
		)
	}
	content = append(content, contentBlock{Type: "text", Text: recognitionPrompt(len(crops))})

	messages := hints.messages()
	messages = append(messages, message{Role: "user", Content: content})

	payload := messageRequest{
		Model:       c.cfg.Model,
		MaxTokens:   defaultMaxTokens,
		Temperature: 0,
		Messages:    messages,
	}

	response, err := c.send(ctx, payload)
	if err != nil {
		return nil, err
	}
	return parseIndexedLines(response, len(crops)), nil
}

// HealthCheck issues a minimal request to verify the key and model are
// usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return errors.New("recognition health: api key required")
	}
	payload := messageRequest{
		Model:     c.cfg.Model,
		MaxTokens: 16,
		Messages: []message{
			{Role: "user", Content: []contentBlock{{Type: "text", Text: "Respond with the word ok."}}},
		},
	}
	if _, err := c.send(ctx, payload); err != nil {
		return fmt.Errorf("recognition health: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, payload messageRequest) (string, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("recognition request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("recognition request: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("recognition request: http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("recognition request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return "", &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			RetryAfter: retryAfter,
		}
	}

	var decoded messageResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("recognition request: decode response: %w", err)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("recognition request: api error: %s", strings.TrimSpace(decoded.Error.Message))
	}
	for _, block := range decoded.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("recognition request: empty content (stop_reason=%q)", decoded.StopReason)
}

var indexedLine = regexp.MustCompile(`^\[(\d+)\]\s*(.*)$`)

// parseIndexedLines maps "[i] name" response lines onto a result slice.
// Missing indices stay empty rather than shifting later entries.
func parseIndexedLines(response string, count int) []string {
	results := make([]string, count)
	for _, line := range strings.Split(response, "\n") {
		match := indexedLine.FindStringSubmatch(strings.TrimSpace(line))
		if match == nil {
			continue
		}
		idx, err := strconv.Atoi(match[1])
		if err != nil || idx < 0 || idx >= count {
			continue
		}
		text := strings.TrimSpace(match[2])
		if strings.EqualFold(text, "EMPTY") {
			text = ""
		}
		results[idx] = text
	}
	return results
}

func parseRetryAfter(header string) (time.Duration, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second, true
	}
	if at, err := http.ParseTime(header); err == nil {
		if delay := time.Until(at); delay > 0 {
			return delay, true
		}
	}
	return 0, false
}

func encodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
