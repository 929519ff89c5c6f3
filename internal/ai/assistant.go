package ai

import (
	"context"
)

// Interpretation is the outcome of interpreting one free-text answer.
// Fallback is set when the neutral rating was substituted because the model
// response was unusable, so callers and tests can tell the two apart.
type Interpretation struct {
	Rating   int
	Fallback bool
	Raw      string
}

// Interpreter converts one question/answer pair into a 1-5 rating.
type Interpreter interface {
	Interpret(ctx context.Context, question, answer string) (*Interpretation, error)
}
