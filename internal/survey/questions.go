package survey

import (
	"fmt"
)

const (
	// PointsPerQuestion is the number of points on the per-question rating scale.
	PointsPerQuestion = 5

	// PlaceholderAnswer is substituted by the caller for blank or
	// whitespace-only answers before interpretation.
	PlaceholderAnswer = "No answer provided."
)

// defaultQuestions is the built-in intellectual humility question set.
var defaultQuestions = []string{
	"I enjoy learning from people whose opinions differ from mine.",
	"I find it easy to admit when I'm wrong.",
	"I'm open to revisiting and potentially changing my core beliefs.",
	"I often seek feedback and constructive criticism.",
	"I quickly dismiss opposing viewpoints.",
	"I find it difficult to say 'I don't know.'",
	"I value expertise in areas where I'm not knowledgeable.",
	"I try to see issues from multiple perspectives.",
	"It is important to me to be right, even if evidence suggests otherwise.",
	"I regularly reflect on how my beliefs may be biased or incomplete.",
}

// defaultReverseScored are the 0-based ordinals of the negatively phrased
// statements in the default set. Their ratings are inverted before summation.
var defaultReverseScored = []int{4, 5, 8}

// Config holds the question set and scoring parameters for one survey.
// It is built once at startup and treated as immutable afterwards.
type Config struct {
	Questions            []string
	ReverseScored        []int
	NormalizationDivisor int

	reverse map[int]bool
}

// Default returns the built-in ten-question intellectual humility survey.
func Default() *Config {
	return &Config{
		Questions:            defaultQuestions,
		ReverseScored:        defaultReverseScored,
		NormalizationDivisor: len(defaultQuestions) * PointsPerQuestion,
	}
}

// Validate checks the configuration invariants. The divisor must equal
// 5 x question count so the normalized score spans the full 1-10 range.
func (c *Config) Validate() error {
	if len(c.Questions) == 0 {
		return fmt.Errorf("question set must not be empty")
	}

	for i, q := range c.Questions {
		if q == "" {
			return fmt.Errorf("question %d is empty", i+1)
		}
	}

	for _, i := range c.ReverseScored {
		if i < 0 || i >= len(c.Questions) {
			return fmt.Errorf("reverse-scored index %d is out of range for %d questions", i, len(c.Questions))
		}
	}

	want := len(c.Questions) * PointsPerQuestion
	if c.NormalizationDivisor != want {
		return fmt.Errorf("normalization divisor must be %d (5 x question count), got %d", want, c.NormalizationDivisor)
	}

	return nil
}

// IsReverseScored reports whether the question at the given 0-based ordinal
// is reverse scored.
func (c *Config) IsReverseScored(ordinal int) bool {
	if c.reverse == nil {
		c.reverse = make(map[int]bool, len(c.ReverseScored))
		for _, i := range c.ReverseScored {
			c.reverse[i] = true
		}
	}

	return c.reverse[ordinal]
}

// Len returns the number of questions in the set.
func (c *Config) Len() int {
	return len(c.Questions)
}
