// internal/utils/logger.go
package utils

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/shopinsights/internal/config"
)

// NewLogger builds the process logger from the logging section of the config.
func NewLogger(cfg config.LoggingConfig, environment string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" || environment == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}
