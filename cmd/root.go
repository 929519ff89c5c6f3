package cmd

import (
	"errors"
	"log"

	"github.com/openhumility/humility-survey/internal/results"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "humility-survey"
)

type Config struct {
	Survey  *SurveyConfig  `mapstructure:"survey"`
	AI      *AIConfig      `mapstructure:"ai"`
	Results *ResultsConfig `mapstructure:"results"`
}

type SurveyConfig struct {
	Questions            []string `mapstructure:"questions"`
	ReverseScored        []int    `mapstructure:"reverse-scored"`
	NormalizationDivisor int      `mapstructure:"normalization-divisor"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type ResultsConfig struct {
	Dir    string               `mapstructure:"dir"`
	GitHub *GitHubResultsConfig `mapstructure:"github"`
}

type GitHubResultsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	TokenFile string `mapstructure:"token-file"`

	results.GitHubConfig `mapstructure:",squash"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "humility-survey is a simple cli that scores open-ended answers to an intellectual humility questionnaire",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("gemini-api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	if err := viper.BindEnv("github-token-file", "GITHUB_TOKEN_FILE"); err != nil {
		log.Fatalf("binding GITHUB_TOKEN_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is humility-survey.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for the run and questions commands.
	if runCmd.CalledAs() == "" && questionsCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// The built-in question set covers a missing config file, but a config
	// file parsed with error stops the run.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
