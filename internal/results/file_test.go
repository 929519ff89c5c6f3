package results

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/openhumility/humility-survey/internal/survey"
	"go.uber.org/zap"
)

func testSubmission() *survey.Submission {
	return &survey.Submission{
		ID: "sub-1",
		Entries: []survey.Entry{
			{Question: "Q1?", Answer: "yes", Rating: 4},
			{Question: "Q2?", Answer: "no", Rating: 4},
		},
		FinalScore: 7.5,
		Band:       survey.BandFairlyHigh,
	}
}

func TestFileSinkSave(t *testing.T) {
	dir := t.TempDir()

	sink := NewFileSink(filepath.Join(dir, "results"), zap.NewNop())
	sink.now = func() time.Time {
		return time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)
	}

	path, err := sink.Save(context.Background(), testSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if filepath.Base(path) != "humility-survey-20250102-150405.txt" {
		t.Fatalf("unexpected file name: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading results file: %v", err)
	}

	content := string(data)

	lines := strings.SplitN(content, "\n", 2)
	if !strings.HasPrefix(lines[0], "Recorded: 2025-01-02T15:04:05Z") {
		t.Fatalf("expected timestamp header, got %q", lines[0])
	}
	if !strings.Contains(lines[0], "submission sub-1") {
		t.Fatalf("expected submission id in header, got %q", lines[0])
	}

	want := "Q1: Q1?\nAnswer: yes\n\nQ2: Q2?\nAnswer: no\n\nFinal Score: 7.5\n"
	if !strings.HasSuffix(content, want) {
		t.Fatalf("unexpected transcript body:\n%q", content)
	}
}
