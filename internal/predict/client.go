// Package predict talks to the remote digit prediction service.
package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// DefaultEndpoint is the prediction URL used when none is configured.
const DefaultEndpoint = "http://localhost:5000/predict"

const defaultAppErrorMessage = "Prediction failed"

var (
	// ErrBusy is returned when a request is already in flight.
	ErrBusy = errors.New("prediction already in flight")
	// ErrMalformedResponse is returned when the service body cannot be understood.
	ErrMalformedResponse = errors.New("malformed prediction response")
)

// Prediction is a successful classification.
type Prediction struct {
	Digit      int
	Confidence float64
}

// APIError is a rejection reported by the service itself.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("prediction service error (status %d): %s", e.StatusCode, e.Message)
}

type requestBody struct {
	Image string `json:"image"`
}

type successBody struct {
	Digit      *int     `json:"digit"`
	Confidence *float64 `json:"confidence"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Client sends snapshots to the prediction endpoint. At most one request is
// in flight per client.
type Client struct {
	endpoint string
	http     *http.Client
	inFlight *semaphore.Weighted
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// NewClient creates a client for endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{},
		inFlight: semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the configured prediction URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Predict sends a base64 PNG payload and returns the classification.
// Service rejections are returned as *APIError; everything else that keeps a
// usable answer from arriving is a transport-class error.
func (c *Client) Predict(ctx context.Context, image string) (Prediction, error) {
	if !c.inFlight.TryAcquire(1) {
		return Prediction{}, ErrBusy
	}
	defer c.inFlight.Release(1)

	payload, err := json.Marshal(requestBody{Image: image})
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", RequestID(ctx))

	res, err := c.http.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to read response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return Prediction{}, decodeError(res.StatusCode, body)
	}
	return decodeSuccess(body)
}

func decodeSuccess(body []byte) (Prediction, error) {
	var out successBody
	if err := json.Unmarshal(body, &out); err != nil {
		return Prediction{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if out.Digit == nil || out.Confidence == nil {
		return Prediction{}, fmt.Errorf("%w: missing digit or confidence", ErrMalformedResponse)
	}
	if *out.Digit < 0 || *out.Digit > 9 {
		return Prediction{}, fmt.Errorf("%w: digit %d out of range", ErrMalformedResponse, *out.Digit)
	}
	if *out.Confidence < 0 || *out.Confidence > 1 {
		return Prediction{}, fmt.Errorf("%w: confidence %v out of range", ErrMalformedResponse, *out.Confidence)
	}
	return Prediction{Digit: *out.Digit, Confidence: *out.Confidence}, nil
}

func decodeError(status int, body []byte) error {
	var out errorBody
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("%w: status %d: %v", ErrMalformedResponse, status, err)
	}
	msg := out.Error
	if msg == "" {
		msg = defaultAppErrorMessage
	}
	return &APIError{StatusCode: status, Message: msg}
}

type requestIDKey struct{}

// WithRequestID attaches an attempt identifier to ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the identifier attached to ctx, or a fresh one.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}
