package gemini

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/openhumility/humility-survey/internal/ai"
	"github.com/openhumility/humility-survey/internal/utils"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

// FallbackRating is substituted when the model response cannot be used as
// a rating. It is the scale midpoint so one bad answer never skews the run.
const FallbackRating = 3

const systemInstruction = "You are a helpful assistant. You will be given a statement about intellectual humility " +
	"and the user's answer. Your task: rate how strongly the user's answer reflects agreement " +
	"with the statement on a 1-5 scale, with 1 = strongly disagrees " +
	"and 5 = strongly agrees."

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

// Interpreter turns one question/answer pair into a 1-5 rating by asking
// Gemini and parsing the reply. Any unusable reply, out-of-range value or
// failed call collapses to the neutral fallback rating instead of an error.
type Interpreter struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewInterpreter(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Interpreter {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Interpreter{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (i *Interpreter) Interpret(ctx context.Context, question, answer string) (*ai.Interpretation, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("question is required")
	}

	prompt := buildPrompt(question, answer)

	i.logger.Debug("gemini interpret request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, i.maxLogLen)),
	)

	raw, err := i.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		i.logger.Warn("model call failed, using fallback rating",
			zap.Error(err),
			zap.Int("fallback", FallbackRating),
		)
		return &ai.Interpretation{Rating: FallbackRating, Fallback: true}, nil
	}

	i.logger.Debug("gemini interpret response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, i.maxLogLen)),
	)

	rating, err := parseRating(raw)
	if err != nil {
		i.logger.Warn("unusable model response, using fallback rating",
			zap.Error(err),
			zap.String("response_preview", utils.TruncateForLog(raw, i.maxLogLen)),
			zap.Int("fallback", FallbackRating),
		)
		return &ai.Interpretation{Rating: FallbackRating, Fallback: true, Raw: raw}, nil
	}

	return &ai.Interpretation{Rating: rating, Raw: raw}, nil
}

func buildPrompt(question, answer string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Question: {{QUESTION}}\nUser's answer: '{{ANSWER}}'\n\nRespond with a single integer from 1 to 5."
	}
	prompt := strings.ReplaceAll(template, "{{QUESTION}}", question)
	prompt = strings.ReplaceAll(prompt, "{{ANSWER}}", answer)
	return prompt
}

// parseRating extracts the bare integer the model was asked for. Code fences
// and stray backticks are stripped first since models like to add them.
func parseRating(raw string) (int, error) {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
		if idx := strings.LastIndex(cleaned, "```"); idx != -1 {
			cleaned = cleaned[:idx]
		}
	}
	cleaned = strings.Trim(cleaned, "`")
	cleaned = strings.TrimSpace(cleaned)

	rating, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, fmt.Errorf("parse rating %q: %w", raw, err)
	}

	if rating < 1 || rating > 5 {
		return 0, fmt.Errorf("rating %d is out of range [1,5]", rating)
	}

	return rating, nil
}
