package main

import (
	"os"

	"github.com/spf13/cobra"

	"resumeqa/internal/config"
	"resumeqa/internal/logger"
)

type rootFlags struct {
	configPath string
	logLevel   string
	logJSON    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.GetDefault().Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "resumeqa",
		Short:         "Answer questions about a resume with TF-IDF retrieval and an LLM",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "config.yaml", "Path to YAML config file (defaults are used when missing)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level override: debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&flags.logJSON, "log-json", false, "Emit logs as JSON")
	cmd.AddCommand(
		newServeCmd(flags),
		newAskCmd(flags),
		newSearchCmd(flags),
		newInitConfigCmd(flags),
	)
	return cmd
}

// loadConfig reads the config and initialises the process logger from it.
func loadConfig(flags *rootFlags) (*config.AppConfig, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	if flags.logJSON {
		cfg.Logging.JSON = true
	}
	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.LogLevel(cfg.Logging.Level)
	logCfg.JSON = cfg.Logging.JSON
	logger.Init(logCfg)
	return cfg, nil
}
