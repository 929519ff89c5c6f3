package cmd

import (
	"fmt"
	"log"

	"github.com/openhumility/humility-survey/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Print the configured question set",
	Run: func(_ *cobra.Command, _ []string) {
		logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
		if err != nil {
			log.Fatalf("creating a logger: %s", err)
		}

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		cfg := surveyConfig(config)
		if err := cfg.Validate(); err != nil {
			logger.Fatal("invalid survey configuration", zap.Error(err))
		}

		for i, question := range cfg.Questions {
			marker := ""
			if cfg.IsReverseScored(i) {
				marker = " (reverse scored)"
			}
			fmt.Printf("%2d. %s%s\n", i+1, question, marker)
		}
	},
}

func init() {
	rootCmd.AddCommand(questionsCmd)
}
