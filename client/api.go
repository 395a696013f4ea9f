package client

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/habedi/nodecli/pkg/apperr"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout is used when a Client is created with a zero timeout.
const DefaultTimeout = 30 * time.Second

// UserAgent is sent with every request.
var UserAgent = "nodecli"

// StatusError reports a response with a non-2xx status code.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected HTTP status %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Client talks to a single node over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for the node at baseURL (for example http://127.0.0.1:8545).
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL builds the node address from host and port.
func BaseURL(host string, port int) string {
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}

func (c *Client) URL() string { return c.baseURL }

// createRequest creates a GET request for a node path.
func (c *Client) createRequest(ctx context.Context, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		log.Error().Err(err).Str("url", c.baseURL+path).Msg("Failed to create HTTP request object")
		return nil, apperr.HTTP(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	return req, nil
}

// sendRequest sends the request and checks the status code.
// The caller owns the body of a successful response.
func (c *Client) sendRequest(req *http.Request) (*http.Response, error) {
	log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Msg("Sending HTTP request")
	resp, err := c.http.Do(req)
	if err != nil {
		log.Error().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("HTTP request failed")
		return nil, apperr.HTTP(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, readErr := io.ReadAll(io.LimitReader(resp.Body, 512))
		bodyStr := ""
		if readErr == nil {
			bodyStr = strings.TrimSpace(string(bodyBytes))
		}
		resp.Body.Close()
		log.Error().Str("method", req.Method).Str("url", req.URL.String()).Int("status", resp.StatusCode).Str("body", bodyStr).Msg("HTTP request returned non-OK status")
		return nil, apperr.HTTP(&StatusError{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Body:       bodyStr,
		})
	}
	log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Int("status", resp.StatusCode).Msg("HTTP request successful")
	return resp, nil
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read response body")
		return nil, apperr.HTTP(err)
	}
	return body, nil
}

// get performs a GET on path and returns the whole body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := c.createRequest(ctx, path)
	if err != nil {
		return nil, err
	}
	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}
	return readResponseBody(resp)
}
