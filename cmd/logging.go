package cmd

import (
	"os"

	logpkg "sqlsubmit/internal/log"

	"github.com/spf13/viper"
)

// initLogging runs after the config file is read so that flag, config and
// environment all take part in picking the level.
func initLogging() {
	// Environment variable override takes precedence over flag binding if explicitly set.
	envLevel := os.Getenv("SQLSUBMIT_LOG_LEVEL")
	levelStr := viper.GetString("log_level")
	if envLevel != "" {
		levelStr = envLevel
	}
	lvl, err := logpkg.ParseLevel(levelStr)
	logger := logpkg.NewSimple(lvl)
	if err != nil {
		logger.Warn("invalid log level requested, using info", "requested", levelStr, "error", err)
	}
	logpkg.SetGlobal(logger)
}
