package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseChunk(text string) string {
	return fmt.Sprintf("data: {\"candidates\":[{\"content\":{\"role\":\"model\",\"parts\":[{\"text\":%q}]}}]}\n\n", text)
}

func TestGeminiStream(t *testing.T) {
	var gotPath, gotQuery, gotKey, gotPrompt string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("x-goog-api-key")

		var req geminiRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			gotPrompt = req.Contents[0].Parts[0].Text
		}

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseChunk("Hello"))
		fmt.Fprint(w, sseChunk(""))
		fmt.Fprint(w, sseChunk(", world"))
	}))
	defer srv.Close()

	g := NewGemini(srv.Client(), srv.URL+"/", "gemini-2.0-flash", "k-123")
	stream, err := g.Stream(context.Background(), "say hi")
	require.NoError(t, err)
	defer stream.Close()

	var chunks []string
	for {
		chunk, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		chunks = append(chunks, chunk)
	}

	assert.Equal(t, []string{"Hello", ", world"}, chunks)
	assert.Equal(t, "/v1beta/models/gemini-2.0-flash:streamGenerateContent", gotPath)
	assert.Equal(t, "alt=sse", gotQuery)
	assert.Equal(t, "k-123", gotKey)
	assert.Equal(t, "say hi", gotPrompt)
}

func TestGeminiStreamHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`)
	}))
	defer srv.Close()

	g := NewGemini(srv.Client(), srv.URL, "m", "k")
	_, err := g.Stream(context.Background(), "x")
	require.Error(t, err)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 429, perr.StatusCode)
	assert.Equal(t, "RESOURCE_EXHAUSTED", perr.Status)
	assert.Equal(t, "quota exceeded", perr.Message)
	assert.True(t, perr.IsRateLimited())
}

func TestGeminiStreamErrorMidStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sseChunk("partial"))
		fmt.Fprint(w, "data: {\"error\":{\"code\":500,\"message\":\"internal\",\"status\":\"INTERNAL\"}}\n\n")
	}))
	defer srv.Close()

	g := NewGemini(srv.Client(), srv.URL, "m", "k")
	stream, err := g.Stream(context.Background(), "x")
	require.NoError(t, err)
	defer stream.Close()

	chunk, err := stream.Next()
	require.NoError(t, err)
	assert.Equal(t, "partial", chunk)

	_, err = stream.Next()
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 500, perr.StatusCode)

	_, err = stream.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestGeminiStreamEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
	}))
	defer srv.Close()

	g := NewGemini(srv.Client(), srv.URL, "m", "k")
	stream, err := g.Stream(context.Background(), "x")
	require.NoError(t, err)
	defer stream.Close()

	_, err = stream.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestGeminiComplete(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"one "},{"text":"two"}]},"finishReason":"STOP"}]}`)
	}))
	defer srv.Close()

	g := NewGemini(srv.Client(), srv.URL, "gemini-2.0-flash", "k")
	text, err := g.Complete(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "one two", text)
	assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", gotPath)
}

func TestGeminiCompleteEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[{"finishReason":"SAFETY"}]}`)
	}))
	defer srv.Close()

	g := NewGemini(srv.Client(), srv.URL, "m", "k")
	_, err := g.Complete(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SAFETY")
}

func TestGeminiCompleteNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewGemini(srv.Client(), srv.URL, "m", "k")
	_, err := g.Complete(context.Background(), "x")

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusBadGateway, perr.StatusCode)
	assert.Equal(t, "bad gateway", perr.Message)
}

func TestChunkTextBlockedPrompt(t *testing.T) {
	_, err := chunkText([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`), 200)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "blocked"))
}

func TestChunkTextMalformed(t *testing.T) {
	_, err := chunkText([]byte(`{"candidates":`), 200)
	assert.ErrorIs(t, err, errMalformedChunk)
}
