package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/modelfleet/modelfleet/chatsession"
)

var (
	configPath string
	modelFlag  string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "modelfleet",
	Short: "Chat with OpenAI-compatible backends across multiple servers",
	Long: `modelfleet discovers the models exposed by one or more OpenAI-compatible
servers and runs conversations against them.

Configuration comes from a servers file (--config) or, when no file is
given, from the API_KEY and BASE_URL environment variables.

Quick Start:
  modelfleet models                   # List discovered models
  modelfleet ask "Hello there"        # One-shot question
  modelfleet ask --stream "Hello"     # Stream the reply
  modelfleet chat                     # Interactive conversation`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Warnf("invalid log level %q, using info", logLevel)
			level = logrus.InfoLevel
		}
		logrus.SetLevel(level)
	},
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the servers configuration file (default: resolve from API_KEY/BASE_URL)")
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model to select, by identifier or name (default: identifier 1)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warning", "Log level (trace, debug, info, warning, error)")

	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
}

// buildSession resolves configuration and returns a ready session. Fatal
// configuration errors terminate the process here: the library itself never
// exits, the hosting CLI owns that decision.
func buildSession(ctx context.Context) (*chatsession.Session, error) {
	var (
		sess *chatsession.Session
		err  error
	)
	if configPath != "" {
		sess, err = chatsession.NewSessionFromFile(ctx, configPath)
	} else {
		sess, err = chatsession.NewSessionFromEnv(ctx)
	}
	if err != nil {
		if chatsession.IsFatalConfig(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return nil, err
	}

	if modelFlag != "" {
		if err := sess.SelectModel(chatsession.ParseModelRef(modelFlag)); err != nil {
			return nil, err
		}
	}
	return sess, nil
}
