//go:build integration
// +build integration

package integration

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"
)

type paper struct {
	ID    string `json:"id"`
	Items []struct {
		Number   int      `json:"number"`
		Question string   `json:"question"`
		Options  []string `json:"options"`
	} `json:"items"`
}

func TestTakeAndSubmitTest(t *testing.T) {
	resetBank(t)
	addText(t, pastedQuestions(5))

	resp := makeRequest(t, http.MethodPost, fmt.Sprintf("%s/v1/tests", baseURL()), "", nil)
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusCreated)

	var p paper
	decodeBody(t, resp, &p)
	if len(p.Items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(p.Items))
	}

	// Answer every question correctly; the "right N" option is the key.
	answers := map[string]string{}
	for i, item := range p.Items {
		for _, opt := range item.Options {
			if strings.HasPrefix(opt, "right ") {
				answers[strconv.Itoa(i)] = opt
			}
		}
	}

	submitURL := fmt.Sprintf("%s/v1/tests/%s/submit", baseURL(), p.ID)
	sub := makeRequest(t, http.MethodPost, submitURL, "application/json", map[string]any{"answers": answers})
	defer sub.Body.Close()
	expectStatus(t, sub, http.StatusOK)

	var out struct {
		Summary string `json:"summary"`
	}
	decodeBody(t, sub, &out)
	if out.Summary != "5 / 5 (100.0%)" {
		t.Fatalf("unexpected summary %q", out.Summary)
	}

	again := makeRequest(t, http.MethodPost, submitURL, "application/json", map[string]any{"answers": answers})
	defer again.Body.Close()
	expectStatus(t, again, http.StatusNotFound)
}
