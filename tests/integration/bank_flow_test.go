//go:build integration
// +build integration

package integration

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
)

func TestParseDedupeAndCount(t *testing.T) {
	resetBank(t)

	first := addText(t, pastedQuestions(3))
	if first.Added != 3 || first.Duplicates != 0 {
		t.Fatalf("unexpected first merge: %+v", first)
	}

	second := addText(t, pastedQuestions(4))
	if second.Added != 1 || second.Duplicates != 3 {
		t.Fatalf("unexpected second merge: %+v", second)
	}

	if n := bankCount(t); n != 4 {
		t.Fatalf("expected 4 questions, got %d", n)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	resetBank(t)
	addText(t, pastedQuestions(2))

	resp := makeRequest(t, http.MethodGet, fmt.Sprintf("%s/v1/questions/export", baseURL()), "", nil)
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)
	if got := resp.Header.Get("Content-Disposition"); got != "attachment; filename=mos-questions.json" {
		t.Fatalf("unexpected Content-Disposition %q", got)
	}
	exported, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}

	resetBank(t)
	imp := makeRequest(t, http.MethodPost, fmt.Sprintf("%s/v1/questions/import", baseURL()), "application/json", string(exported))
	defer imp.Body.Close()
	expectStatus(t, imp, http.StatusOK)

	var res mergeResult
	decodeBody(t, imp, &res)
	if res.Added != 2 {
		t.Fatalf("expected 2 imported questions, got %+v", res)
	}
}

func TestEditAndDelete(t *testing.T) {
	resetBank(t)
	addText(t, pastedQuestions(2))

	payload := map[string]any{
		"question":      "Edited?",
		"options":       []string{"yes", "no"},
		"correctAnswer": "yes",
	}
	resp := makeRequest(t, http.MethodPut, fmt.Sprintf("%s/v1/questions/0", baseURL()), "application/json", payload)
	resp.Body.Close()
	expectStatus(t, resp, http.StatusNoContent)

	resp = makeRequest(t, http.MethodDelete, fmt.Sprintf("%s/v1/questions/1", baseURL()), "", nil)
	resp.Body.Close()
	expectStatus(t, resp, http.StatusNoContent)

	list := makeRequest(t, http.MethodGet, fmt.Sprintf("%s/v1/questions", baseURL()), "", nil)
	defer list.Body.Close()
	expectStatus(t, list, http.StatusOK)

	var out struct {
		Count     int               `json:"count"`
		Questions []json.RawMessage `json:"questions"`
	}
	decodeBody(t, list, &out)
	if out.Count != 1 {
		t.Fatalf("expected 1 question after delete, got %d", out.Count)
	}
	var q struct {
		Question string `json:"question"`
	}
	if err := json.Unmarshal(out.Questions[0], &q); err != nil {
		t.Fatalf("decode question: %v", err)
	}
	if q.Question != "Edited?" {
		t.Fatalf("edit not persisted, got %q", q.Question)
	}
}
