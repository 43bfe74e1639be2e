package genai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

const maxCompleteBody = 8 << 20

// Gemini is a Provider backed by the Gemini generateContent REST API.
type Gemini struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
}

func NewGemini(httpClient *http.Client, baseURL, model, apiKey string) *Gemini {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Gemini{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		apiKey:     apiKey,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

func newGeminiRequest(prompt string) geminiRequest {
	return geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	}
}

func (g *Gemini) endpoint(method string) string {
	return fmt.Sprintf("%s/v1beta/models/%s:%s", g.baseURL, url.PathEscape(g.model), method)
}

func (g *Gemini) headers() http.Header {
	h := http.Header{}
	h.Set("x-goog-api-key", g.apiKey)
	return h
}

func (g *Gemini) Stream(ctx context.Context, prompt string) (*TextStream, error) {
	resp, err := doRequest(ctx, g.httpClient, g.endpoint("streamGenerateContent")+"?alt=sse", g.headers(), newGeminiRequest(prompt))
	if err != nil {
		return nil, err
	}

	events := newEventReader(resp.Body)
	next := func() (string, error) {
		for events.Next() {
			text, err := chunkText([]byte(events.Data()), resp.StatusCode)
			if err != nil {
				return "", err
			}
			if text == "" {
				continue
			}
			return text, nil
		}
		if err := events.Err(); err != nil {
			return "", fmt.Errorf("genai: read stream: %w", err)
		}
		return "", io.EOF
	}

	return NewTextStream(next, resp.Body), nil
}

func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := doRequest(ctx, g.httpClient, g.endpoint("generateContent"), g.headers(), newGeminiRequest(prompt))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCompleteBody))
	if err != nil {
		return "", fmt.Errorf("genai: read response: %w", err)
	}

	text, err := chunkText(body, resp.StatusCode)
	if err != nil {
		return "", err
	}
	if text == "" {
		reason := gjson.GetBytes(body, "candidates.0.finishReason").String()
		if reason == "" {
			reason = "none"
		}
		return "", fmt.Errorf("genai: empty response (finish reason %s)", reason)
	}

	return text, nil
}

var errMalformedChunk = errors.New("genai: malformed response chunk")

// chunkText extracts the concatenated candidate text from one response
// object. An error object or a blocked prompt is reported as an error.
func chunkText(data []byte, status int) (string, error) {
	if !gjson.ValidBytes(data) {
		return "", errMalformedChunk
	}

	if perr := providerErrorFrom(data, status); perr != nil {
		return "", perr
	}

	if reason := gjson.GetBytes(data, "promptFeedback.blockReason"); reason.Exists() {
		return "", fmt.Errorf("genai: prompt blocked: %s", reason.String())
	}

	var sb strings.Builder
	for _, part := range gjson.GetBytes(data, "candidates.0.content.parts.#.text").Array() {
		sb.WriteString(part.String())
	}
	return sb.String(), nil
}
