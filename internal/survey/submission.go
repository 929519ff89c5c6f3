package survey

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry is one answered question: the prompt text, the raw free-text answer
// and the interpreted rating. Fallback marks ratings that were substituted
// because the interpreter could not extract a valid one.
type Entry struct {
	Question string
	Answer   string
	Rating   int
	Fallback bool
}

// Submission is a completed, scored survey. It is immutable once built.
type Submission struct {
	ID         string
	CreatedAt  time.Time
	Entries    []Entry
	FinalScore float64
	Band       Band
}

// Score turns the ordered entries into a scored Submission. The entries must
// match the configured question set in count and order.
func Score(cfg *Config, entries []Entry) (*Submission, error) {
	ratings := make([]int, len(entries))
	for i, e := range entries {
		ratings[i] = e.Rating
	}

	final, err := cfg.Aggregate(ratings)
	if err != nil {
		return nil, fmt.Errorf("aggregate ratings: %w", err)
	}

	return &Submission{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now(),
		Entries:    entries,
		FinalScore: final,
		Band:       Recommend(final),
	}, nil
}

// FormatScore renders a final score with one decimal place, the way it is
// shown to the user and written to transcripts.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 1, 64)
}

// Transcript renders the submission as the flat text blob consumed by the
// persistence sinks: per question a "Q<i>:" line and an "Answer:" line
// separated by blank lines, then the final score.
func (s *Submission) Transcript() string {
	var b strings.Builder

	for i, e := range s.Entries {
		fmt.Fprintf(&b, "Q%d: %s\n", i+1, e.Question)
		fmt.Fprintf(&b, "Answer: %s\n", e.Answer)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Final Score: %s", FormatScore(s.FinalScore))

	return b.String()
}
