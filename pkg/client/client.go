// Package client is a typed Go client for the medcart REST API.
//
//	c := client.New("http://localhost:5000")
//	sess, err := c.Login(ctx, "city@pharm.com", "secret")
//	products, err := c.Products(ctx, "CityPharm")
//
//	var cart client.Cart
//	cart.Add(products[0])
//	req, err := cart.Checkout(customer, address)
//	purchase, err := c.CreatePurchase(ctx, req)
//
// There is no global state: the bearer token lives in the Session value the
// caller passes to each authenticated call.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/shashiranjanraj/medcart/pkg/logger"
)

// defaultTransport pools connections across every Client that does not bring
// its own http.Client.
var defaultTransport = &http.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 20,
	IdleConnTimeout:     90 * time.Second,
}

// Error is a non-2xx API response.
type Error struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *Error) Error() string {
	return fmt.Sprintf("medcart: %d %s", e.StatusCode, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

type Client struct {
	base      string
	http      *http.Client
	timeout   time.Duration
	retries   int
	retryWait time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces the pooled default client, e.g. with
// httptest.Server.Client().
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-attempt timeout (default 30s).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRetry sets the total attempts for idempotent requests and the initial
// backoff, which doubles after each attempt. Only transport failures are
// retried.
func WithRetry(attempts int, wait time.Duration) Option {
	return func(c *Client) {
		c.retries = attempts
		c.retryWait = wait
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:      strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Transport: defaultTransport},
		timeout:   30 * time.Second,
		retries:   1,
		retryWait: 500 * time.Millisecond,
	}
	for _, o := range opts {
		o(c)
	}
	if c.retries < 1 {
		c.retries = 1
	}
	return c
}

// envelope mirrors the server's response body.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Count   *int              `json:"count"`
	Errors  map[string]string `json:"errors"`
}

// call is one API request. body is JSON-encoded unless it is already an
// io.Reader, in which case contentType must be set.
type call struct {
	method      string
	path        string
	token       string
	body        interface{}
	contentType string
}

// do sends c and decodes the envelope's data into dest (which may be nil).
// It returns the envelope message.
func (cl *Client) do(ctx context.Context, c call, dest interface{}) (string, error) {
	attempts := 1
	if c.method == http.MethodGet || c.method == http.MethodPut || c.method == http.MethodDelete {
		attempts = cl.retries
	}

	var payload []byte
	var reader io.Reader
	switch b := c.body.(type) {
	case nil:
	case io.Reader:
		// Streams cannot be replayed.
		reader, attempts = b, 1
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return "", fmt.Errorf("medcart: encode body: %w", err)
		}
		payload = raw
		c.contentType = "application/json"
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		body := reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}

		env, status, err := cl.send(ctx, c, body)
		if err == nil {
			if status < 200 || status > 299 {
				msg := env.Message
				if msg == "" {
					msg = http.StatusText(status)
				}
				return "", &Error{StatusCode: status, Message: msg, Fields: env.Errors}
			}
			if dest != nil && len(env.Data) > 0 {
				if err := json.Unmarshal(env.Data, dest); err != nil {
					return "", fmt.Errorf("medcart: decode data: %w", err)
				}
			}
			return env.Message, nil
		}

		lastErr = err
		if attempt < attempts {
			backoff := time.Duration(float64(cl.retryWait) * math.Pow(2, float64(attempt-1)))
			logger.Warn("medcart client: request failed, retrying",
				"path", c.path, "attempt", attempt, "backoff", backoff, "error", err)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return "", fmt.Errorf("medcart: %s %s failed after %d attempts: %w", c.method, c.path, attempts, lastErr)
}

func (cl *Client) send(ctx context.Context, c call, body io.Reader) (envelope, int, error) {
	ctx, cancel := context.WithTimeout(ctx, cl.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, c.method, cl.base+c.path, body)
	if err != nil {
		return envelope{}, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if c.contentType != "" {
		req.Header.Set("Content-Type", c.contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := cl.http.Do(req)
	if err != nil {
		return envelope{}, 0, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return envelope{}, 0, err
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if res.StatusCode >= 200 && res.StatusCode <= 299 {
				return envelope{}, 0, fmt.Errorf("decode response: %w", err)
			}
			env.Message = strings.TrimSpace(string(raw))
		}
	}
	return env, res.StatusCode, nil
}
