//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/gokatarajesh/quiz-bank/internal/question"
)

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func baseURL() string {
	return envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")
}

// makeRequest sends body as-is when it is a string, JSON-encoded otherwise.
func makeRequest(t *testing.T, method, url, contentType string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	return resp
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected %d, got %d: %s", want, resp.StatusCode, body)
	}
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// resetBank empties the shared bank so each test starts clean.
func resetBank(t *testing.T) {
	t.Helper()
	resp := makeRequest(t, http.MethodDelete, fmt.Sprintf("%s/v1/questions", baseURL()), "", nil)
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusNoContent)
}

func pastedQuestions(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "%d. Integration question %d?\n", i, i)
		fmt.Fprintf(&b, "%sright %d\n", question.MarkerCorrect, i)
		fmt.Fprintf(&b, "%swrong %d\n", question.MarkerPlain, i)
	}
	return b.String()
}

type mergeResult struct {
	Added      int `json:"added"`
	Duplicates int `json:"duplicates"`
}

func addText(t *testing.T, text string) mergeResult {
	t.Helper()
	resp := makeRequest(t, http.MethodPost, fmt.Sprintf("%s/v1/questions/parse", baseURL()), "text/plain", text)
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	var out mergeResult
	decodeBody(t, resp, &out)
	return out
}

func bankCount(t *testing.T) int {
	t.Helper()
	resp := makeRequest(t, http.MethodGet, fmt.Sprintf("%s/v1/questions/count", baseURL()), "", nil)
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	var out struct {
		Count int `json:"count"`
	}
	decodeBody(t, resp, &out)
	return out.Count
}
