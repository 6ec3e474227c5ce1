package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single backend call. Generation on the backend is
// slow, so this is minutes rather than seconds.
const DefaultTimeout = 180 * time.Second

// Request is a single HTTP call to the backend
type Request struct {
	Method      string
	URL         string
	Body        []byte
	ContentType string
	Header      http.Header
}

// Response is a fully read 2xx response
type Response struct {
	URL        string
	StatusCode int
	Body       []byte
}

// Transport performs synchronous backend calls and classifies failures
// into ConnectionError, ServerError and MalformedResponseError
type Transport struct {
	client  *http.Client
	timeout time.Duration
}

// NewTransport creates a Transport with the given per-call timeout
func NewTransport(timeout time.Duration) *Transport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Transport{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Timeout returns the per-call upper bound
func (t *Transport) Timeout() time.Duration {
	return t.timeout
}

// Do sends the request. Any failure to obtain a response, including the
// timeout, is a ConnectionError; a non-2xx status is a ServerError.
func (t *Transport) Do(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	LogDebug("Sending request", "method", method, "url", req.URL, "bytes", len(req.Body), "timeout", t.timeout)

	start := time.Now()
	resp, err := t.client.Do(httpReq)
	if err != nil {
		LogDebug("Request failed", "url", req.URL, "error", err)
		return nil, &ConnectionError{URL: req.URL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{URL: req.URL, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	LogDebug("Request completed", "url", req.URL, "status", resp.StatusCode, "bytes", len(data), "elapsed", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServerError{URL: req.URL, StatusCode: resp.StatusCode, Body: string(data)}
	}

	return &Response{URL: req.URL, StatusCode: resp.StatusCode, Body: data}, nil
}

// Get performs a GET request
func (t *Transport) Get(ctx context.Context, url string, header http.Header) (*Response, error) {
	return t.Do(ctx, Request{Method: http.MethodGet, URL: url, Header: header})
}

// Post performs a POST request with the given body
func (t *Transport) Post(ctx context.Context, url string, body []byte, contentType string, header http.Header) (*Response, error) {
	return t.Do(ctx, Request{Method: http.MethodPost, URL: url, Body: body, ContentType: contentType, Header: header})
}

// DecodeJSON unmarshals a response body, classifying failure as a
// MalformedResponseError
func DecodeJSON(resp *Response, v interface{}) error {
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return &MalformedResponseError{URL: resp.URL, Body: string(resp.Body), Err: err}
	}
	return nil
}
