package logger

import (
	"os"
	"strings"

	"github.com/FlorianRuen/devhub/config"
	"github.com/sirupsen/logrus"
)

// Setup configures the logrus standard logger
// verbose overrides the configured level with debug and reports the caller of each entry
// logs always go to stderr so that CLI tables on stdout stay parsable
func Setup(cfg config.Config, verbose bool) {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if cfg.Logs.OutputLogsAsJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	logrus.SetLevel(Level(cfg, verbose))
	logrus.SetReportCaller(verbose)
}

// Level returns the level Setup applies
func Level(cfg config.Config, verbose bool) logrus.Level {
	if verbose {
		return logrus.DebugLevel
	}

	return StringToLogrusLogType(cfg.Logs.Level)
}

// StringToLogrusLogType will convert string to the right logrus level
// unknown values fall back to error
func StringToLogrusLogType(logLevel string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(logLevel)) {
	case "error":
		return logrus.ErrorLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}
