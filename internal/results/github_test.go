package results

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestGitHubSink(url string) *GitHubSink {
	sink := NewGitHubSink(&GitHubConfig{
		Owner:  "owner",
		Repo:   "repo",
		Branch: "main",
		Dir:    "results",
	}, "token-123", zap.NewNop())

	sink.APIURL = url
	sink.now = func() time.Time {
		return time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)
	}

	return sink
}

func TestGitHubSinkSaveCreatesFile(t *testing.T) {
	var putBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wantPath := "/repos/owner/repo/contents/results/humility-survey-20250102-150405.txt"
		if r.URL.Path != wantPath {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}

		if got := r.Header.Get("Authorization"); got != "Bearer token-123" {
			t.Fatalf("unexpected authorization header: %q", got)
		}

		switch r.Method {
		case http.MethodGet:
			if got := r.URL.Query().Get("ref"); got != "main" {
				t.Fatalf("unexpected ref: %q", got)
			}
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			if err := json.NewDecoder(r.Body).Decode(&putBody); err != nil {
				t.Fatalf("decoding put body: %v", err)
			}
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"content": {"sha": "abc", "html_url": "https://example.com/blob"}}`))
		default:
			t.Fatalf("unexpected method: %s", r.Method)
		}
	}))
	defer server.Close()

	sink := newTestGitHubSink(server.URL)

	location, err := sink.Save(context.Background(), testSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if location != "https://example.com/blob" {
		t.Fatalf("unexpected location: %s", location)
	}

	if putBody["branch"] != "main" {
		t.Fatalf("expected branch main, got %v", putBody["branch"])
	}

	message, _ := putBody["message"].(string)
	if !strings.Contains(message, "sub-1") {
		t.Fatalf("expected submission id in commit message, got %q", message)
	}

	encoded, _ := putBody["content"].(string)
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("content is not valid base64: %v", err)
	}
	if !strings.Contains(string(decoded), "Final Score: 7.5") {
		t.Fatalf("unexpected pushed content:\n%s", decoded)
	}

	if _, ok := putBody["sha"]; ok {
		t.Fatal("did not expect sha for a new file")
	}
}

func TestGitHubSinkSaveUpdatesExistingFile(t *testing.T) {
	var putBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`{"sha": "existing-sha"}`))
		case http.MethodPut:
			if err := json.NewDecoder(r.Body).Decode(&putBody); err != nil {
				t.Fatalf("decoding put body: %v", err)
			}
			w.Write([]byte(`{"content": {"sha": "new-sha"}}`))
		}
	}))
	defer server.Close()

	sink := newTestGitHubSink(server.URL)

	if _, err := sink.Save(context.Background(), testSubmission()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if putBody["sha"] != "existing-sha" {
		t.Fatalf("expected existing sha in payload, got %v", putBody["sha"])
	}
}

func TestGitHubSinkSaveSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	sink := newTestGitHubSink(server.URL)

	_, err := sink.Save(context.Background(), testSubmission())
	if err == nil {
		t.Fatal("expected error on unauthorized push")
	}
	if !strings.Contains(err.Error(), "bad status") {
		t.Fatalf("unexpected error: %v", err)
	}
}
