//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"smart-blog-api/internal/config"
	"smart-blog-api/internal/database"
	"smart-blog-api/internal/genai"
	"smart-blog-api/internal/handler"
	"smart-blog-api/internal/middleware"
	"smart-blog-api/internal/repository"
	"smart-blog-api/internal/router"
	"smart-blog-api/internal/service"
)

// newTestDB connects to TEST_DATABASE_URL, applies the schema and empties
// both tables. Tests that need it are skipped when the variable is unset.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.New(ctx, url, 4, 0)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.EnsureSchema(ctx))
	_, err = db.Pool.Exec(ctx, `TRUNCATE posts, users`)
	require.NoError(t, err)

	return db
}

// newServer serves the full router over real repositories. The AI route
// talks to a local fake Gemini endpoint that streams the given chunks.
func newServer(t *testing.T, db *database.DB, chunks []string) *httptest.Server {
	t.Helper()

	gemini := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, _ := w.(http.Flusher)
		for _, chunk := range chunks {
			fmt.Fprintf(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":%q}]}}]}\n\n", chunk)
			if flusher != nil {
				flusher.Flush()
			}
		}
	}))
	t.Cleanup(gemini.Close)

	cfg := &config.Config{
		CORSOrigins:         []string{"*"},
		RequestTimeout:      10 * time.Second,
		AIStreamMaxDuration: time.Minute,
		AIStreamIdleTimeout: 30 * time.Second,
	}

	creds, err := service.NewCredentialService("integration-secret", 7*24*time.Hour, bcrypt.MinCost)
	require.NoError(t, err)

	authService := service.NewAuthService(repository.NewUserRepository(db.Pool, 5*time.Second), creds)
	postService := service.NewPostService(repository.NewPostRepository(db.Pool, 5*time.Second))
	aiService := service.NewAIService(genai.NewGemini(gemini.Client(), gemini.URL, "gemini-2.0-flash", "k"), true, 10*time.Second)

	server := httptest.NewServer(router.New(cfg, middleware.NewAuthMiddleware(creds), router.Handlers{
		System: handler.NewSystemHandler(db),
		Docs:   handler.NewDocsHandler(),
		Auth:   handler.NewAuthHandler(authService),
		Post:   handler.NewPostHandler(postService, authService),
		AI:     handler.NewAIHandler(aiService),
	}))
	t.Cleanup(server.Close)

	return server
}

func doJSON(t *testing.T, method string, url string, token string, body any) *http.Response {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(payload))
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}
