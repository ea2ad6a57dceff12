package main

import (
	"fmt"
	"os"

	"github.com/jamesainslie/devclean/pkg/devclean/config"
	"github.com/jamesainslie/devclean/pkg/devclean/logging"
	"github.com/jamesainslie/devclean/pkg/devclean/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// defaultRotationMaxSize applies when logging.rotation.max_size is empty or
// unparsable.
const defaultRotationMaxSize = 10 * types.MiB

// appConfig is the decoded configuration for the running command.
var appConfig *config.Config

// getConfig returns the configuration, decoding it on first use.
func getConfig() (*config.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}
	cfg, err := config.Decode(viper.GetViper())
	if err != nil {
		return nil, err
	}
	appConfig = cfg
	return cfg, nil
}

// initializeLogging is the root PersistentPreRunE. It makes sure the XDG
// directories exist and starts file logging; --verbose mirrors debug
// records to stderr.
func initializeLogging(_ *cobra.Command, _ []string) error {
	cfg, err := getConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	configDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	for _, dir := range []string{configDir, config.DataDir(), config.StateDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	logCfg := logging.Config{
		Level:      cfg.Logging.Level,
		Path:       cfg.Logging.Path,
		Rotation:   parseRotationConfig(cfg.Logging.Rotation),
		Components: cfg.Logging.Components,
	}
	if getVerbose() && !getQuiet() {
		logCfg.Level = "debug"
		logCfg.ConsoleLevel = "debug"
	}

	if err := logging.Init(logCfg); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}

// parseRotationConfig converts the config file's rotation settings.
func parseRotationConfig(rc config.RotationConfig) logging.RotationConfig {
	maxSize, err := types.ParseSize(rc.MaxSize)
	if err != nil || maxSize <= 0 {
		maxSize = defaultRotationMaxSize
	}
	return logging.RotationConfig{
		MaxSize:    maxSize,
		MaxAge:     rc.MaxAge,
		MaxBackups: rc.MaxBackups,
		Daily:      rc.Daily,
	}
}
