package results

import (
	"context"
	"fmt"
	"time"

	"github.com/openhumility/humility-survey/internal/survey"
)

// Sink persists a scored submission somewhere and returns the location it
// was written to. Sinks never influence scoring: a failed save is reported
// to the caller and nothing else.
type Sink interface {
	Name() string
	Save(ctx context.Context, sub *survey.Submission) (string, error)
}

// filename builds the timestamped result file name shared by all sinks.
func filename(ts time.Time) string {
	return fmt.Sprintf("humility-survey-%s.txt", ts.Format("20060102-150405"))
}

// render produces the persisted text: a leading timestamp line carrying the
// submission id, then the transcript.
func render(sub *survey.Submission, ts time.Time) string {
	header := fmt.Sprintf("Recorded: %s (submission %s)", ts.Format(time.RFC3339), sub.ID)
	return header + "\n\n" + sub.Transcript() + "\n"
}
