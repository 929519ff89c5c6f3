package results

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/openhumility/humility-survey/internal/survey"
	"go.uber.org/zap"
)

// FileSink writes each submission to a timestamped text file in a local
// directory.
type FileSink struct {
	dir    string
	logger *zap.Logger

	// now is swappable for tests.
	now func() time.Time
}

func NewFileSink(dir string, logger *zap.Logger) *FileSink {
	if dir == "" {
		dir = "."
	}

	return &FileSink{
		dir:    dir,
		logger: logger,
		now:    time.Now,
	}
}

func (f *FileSink) Name() string { return "file" }

func (f *FileSink) Save(_ context.Context, sub *survey.Submission) (string, error) {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return "", fmt.Errorf("create results directory: %w", err)
	}

	ts := f.now()
	path := filepath.Join(f.dir, filename(ts))

	if err := os.WriteFile(path, []byte(render(sub, ts)), 0o644); err != nil {
		return "", fmt.Errorf("write results file: %w", err)
	}

	f.logger.Debug("wrote results file", zap.String("path", path))

	return path, nil
}
