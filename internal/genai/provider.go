// Package genai talks to the generative-text service. Provider has two
// entry points: Stream yields incremental text chunks, Complete returns the
// whole text from one synchronous call.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

type Provider interface {
	// Stream opens a streaming generation. The caller must Close the
	// returned stream, including after an early stop.
	Stream(ctx context.Context, prompt string) (*TextStream, error)

	// Complete blocks until the full generated text is available.
	Complete(ctx context.Context, prompt string) (string, error)
}

// TextStream yields generated text chunks in arrival order. Next returns
// io.EOF once the upstream body ends. Not safe for concurrent use.
type TextStream struct {
	next   func() (string, error)
	closer io.Closer
	done   bool
}

// NewTextStream builds a stream from an iteration function and the
// resource to release on Close (normally the HTTP response body).
func NewTextStream(next func() (string, error), closer io.Closer) *TextStream {
	return &TextStream{next: next, closer: closer}
}

func (s *TextStream) Next() (string, error) {
	if s.done {
		return "", io.EOF
	}

	chunk, err := s.next()
	if err != nil {
		s.done = true
		return "", err
	}
	return chunk, nil
}

func (s *TextStream) Close() error {
	s.done = true
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// ProviderError is an error reported by the service itself, either as a
// non-200 response or as an error object inside a stream.
type ProviderError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("genai: HTTP %d: %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("genai: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *ProviderError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// NewHTTPClient returns a client suited to long-lived streaming bodies: no
// overall timeout, but a bound on how long the service may take to answer.
func NewHTTPClient(responseHeaderTimeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = responseHeaderTimeout
	return &http.Client{Transport: transport}
}

// doRequest POSTs body as JSON. On success the caller owns the response
// body; on error it is already closed.
func doRequest(ctx context.Context, client *http.Client, endpoint string, headers http.Header, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("genai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("genai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("genai: send request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, readProviderError(resp)
	}

	return resp, nil
}

// readProviderError understands the {"error":{"code","status","message"}}
// body the service returns and falls back to the raw body text.
func readProviderError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if perr := providerErrorFrom(body, resp.StatusCode); perr != nil {
		return perr
	}

	return &ProviderError{StatusCode: resp.StatusCode, Message: string(bytes.TrimSpace(body))}
}

func providerErrorFrom(body []byte, fallbackStatus int) *ProviderError {
	if !gjson.ValidBytes(body) {
		return nil
	}

	message := gjson.GetBytes(body, "error.message")
	if !message.Exists() || message.String() == "" {
		return nil
	}

	status := fallbackStatus
	if code := gjson.GetBytes(body, "error.code"); code.Exists() && code.Int() != 0 {
		status = int(code.Int())
	}

	return &ProviderError{
		StatusCode: status,
		Status:     gjson.GetBytes(body, "error.status").String(),
		Message:    message.String(),
	}
}
