package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/openhumility/humility-survey/internal/ai"
	"github.com/openhumility/humility-survey/internal/ai/gemini"
	"github.com/openhumility/humility-survey/internal/logger"
	"github.com/openhumility/humility-survey/internal/results"
	"github.com/openhumility/humility-survey/internal/secrets"
	"github.com/openhumility/humility-survey/internal/survey"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the humility-survey session: ask, interpret, score and save",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("answers-file", "a", "", "read answers from a file (one per question, in order) instead of prompting")

	viper.BindPFlag("answers-file", runCmd.Flags().Lookup("answers-file"))
}

// run is the main command for the cli.
func run() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the humility-survey", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	surveyCfg := surveyConfig(config)
	if err := surveyCfg.Validate(); err != nil {
		logger.Fatal("invalid survey configuration", zap.Error(err))
	}

	interpreter, err := newInterpreter(ctx, config, logger)
	if err != nil {
		logger.Fatal(
			"building the answer interpreter",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY_FILE environment variable or the 'ai.gemini.api-key-file' key in the configuration file"),
		)
	}

	answers, err := collectAnswers(surveyCfg)
	if err != nil {
		logger.Fatal("collecting answers", zap.Error(err))
	}

	entries := interpretAnswers(ctx, interpreter, surveyCfg, answers, logger)

	sub, err := survey.Score(surveyCfg, entries)
	if err != nil {
		logger.Fatal("scoring the submission", zap.Error(err))
	}

	logger.Info("scored the submission",
		zap.String("submission_id", sub.ID),
		zap.Float64("final_score", sub.FinalScore),
		zap.String("band", string(sub.Band)),
	)

	fmt.Printf("\nYour Intellectual Humility Score: %s/10\n\n%s\n", survey.FormatScore(sub.FinalScore), sub.Band.Advice())

	// Persistence never invalidates the score. Failures are visible, not fatal.
	saveResults(ctx, config, sub, logger)
}

// surveyConfig builds the question set from the config file, falling back to
// the built-in set. A missing divisor defaults to 5 x question count; an
// explicit one is checked by Validate.
func surveyConfig(config *Config) *survey.Config {
	if config == nil || config.Survey == nil || len(config.Survey.Questions) == 0 {
		return survey.Default()
	}

	divisor := config.Survey.NormalizationDivisor
	if divisor == 0 {
		divisor = len(config.Survey.Questions) * survey.PointsPerQuestion
	}

	return &survey.Config{
		Questions:            config.Survey.Questions,
		ReverseScored:        config.Survey.ReverseScored,
		NormalizationDivisor: divisor,
	}
}

func newInterpreter(ctx context.Context, config *Config, logger *zap.Logger) (ai.Interpreter, error) {
	var geminiCfg *GeminiConfig
	provider := ""

	if config != nil && config.AI != nil {
		provider = strings.TrimSpace(strings.ToLower(config.AI.Provider))
		geminiCfg = config.AI.Gemini
	}

	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", config.AI.Provider)
	}

	if geminiCfg == nil {
		geminiCfg = &GeminiConfig{}
	}

	keyFile := strings.TrimSpace(geminiCfg.APIKeyFile)
	if keyFile == "" {
		keyFile = strings.TrimSpace(viper.GetString("gemini-api-key-file"))
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: keyFile,
	})
	if err != nil {
		return nil, err
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, geminiCfg.Model)
	if err != nil {
		return nil, err
	}

	interpLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", generator.Model()),
	)

	return gemini.NewInterpreter(generator, interpLogger, geminiCfg.MaxLogLength), nil
}

// collectAnswers gathers one free-text answer per question, either from the
// answers file or interactively. Blank answers are allowed; the placeholder
// is substituted later, just before interpretation.
func collectAnswers(cfg *survey.Config) ([]string, error) {
	if answersFile := viper.GetString("answers-file"); answersFile != "" {
		return answersFromFile(answersFile, cfg.Len())
	}

	fmt.Printf("This survey asks %d open-ended questions about intellectual humility.\n", cfg.Len())
	fmt.Println("Answer each question in a sentence or two.")

	answers := make([]string, 0, cfg.Len())
	for i, question := range cfg.Questions {
		fmt.Printf("\nQuestion %d: %s\n", i+1, question)

		prompt := promptui.Prompt{
			Label: fmt.Sprintf("Your answer to Q%d", i+1),
		}

		answer, err := prompt.Run()
		if err != nil {
			return nil, err
		}

		answers = append(answers, answer)
	}

	return answers, nil
}

func answersFromFile(path string, count int) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading answers file: %w", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) > count {
		return nil, fmt.Errorf("answers file %q has %d lines, expected at most %d", path, len(lines), count)
	}

	// Missing trailing answers count as blank.
	for len(lines) < count {
		lines = append(lines, "")
	}

	return lines, nil
}

// interpretAnswers runs the interpreter once per question, in order. A blank
// answer is replaced with the fixed placeholder before the call. Fallback
// ratings are already applied inside the interpreter, so a bad model
// response never aborts the run.
func interpretAnswers(ctx context.Context, interpreter ai.Interpreter, cfg *survey.Config, answers []string, logger *zap.Logger) []survey.Entry {
	entries := make([]survey.Entry, 0, cfg.Len())

	for i, question := range cfg.Questions {
		answer := answers[i]

		text := answer
		if strings.TrimSpace(text) == "" {
			text = survey.PlaceholderAnswer
		}

		logger.Info("interpreting answer", zap.Int("question", i+1))

		result, err := interpreter.Interpret(ctx, question, text)
		if err != nil {
			logger.Fatal("interpreting answer", zap.Int("question", i+1), zap.Error(err))
		}

		logger.Info("interpreted answer",
			zap.Int("question", i+1),
			zap.Int("rating", result.Rating),
			zap.Bool("fallback", result.Fallback),
		)

		entries = append(entries, survey.Entry{
			Question: question,
			Answer:   answer,
			Rating:   result.Rating,
			Fallback: result.Fallback,
		})
	}

	return entries
}

func saveResults(ctx context.Context, config *Config, sub *survey.Submission, logger *zap.Logger) {
	for _, sink := range prepareSinks(config, logger) {
		location, err := sink.Save(ctx, sub)
		if err != nil {
			logger.Warn("saving results failed", zap.String("sink", sink.Name()), zap.Error(err))
			fmt.Printf("Saving results via %s failed: %v\n", sink.Name(), err)
			continue
		}

		logger.Info("saved results", zap.String("sink", sink.Name()), zap.String("location", location))
	}
}

func prepareSinks(config *Config, logger *zap.Logger) []results.Sink {
	if config == nil || config.Results == nil {
		return nil
	}

	sinks := make([]results.Sink, 0, 2)

	if config.Results.Dir != "" {
		sinks = append(sinks, results.NewFileSink(config.Results.Dir, logger))
	}

	github := config.Results.GitHub
	if github == nil || !github.Enabled {
		return sinks
	}

	tokenFile := strings.TrimSpace(github.TokenFile)
	if tokenFile == "" {
		tokenFile = strings.TrimSpace(viper.GetString("github-token-file"))
	}

	token, err := secrets.Load(secrets.Source{
		Name: "github token",
		File: tokenFile,
	})
	if err != nil {
		logger.Warn(
			"skipping github sink",
			zap.Error(err),
			zap.String("hint", "set GITHUB_TOKEN_FILE environment variable or the 'results.github.token-file' key in the configuration file"),
		)
		return sinks
	}

	if github.Owner == "" || github.Repo == "" {
		logger.Warn("skipping github sink", zap.String("reason", "results.github.owner and results.github.repo are required"))
		return sinks
	}

	return append(sinks, results.NewGitHubSink(&github.GitHubConfig, token, logger))
}
