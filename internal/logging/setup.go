package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogFormat represents the logging format type
type LogFormat string

const (
	FormatText LogFormat = "text"
	FormatJSON LogFormat = "json"
)

// UnmarshalText implements encoding.TextUnmarshaler for type-safe config parsing
func (f *LogFormat) UnmarshalText(text []byte) error {
	value := LogFormat(strings.ToLower(string(text)))
	switch value {
	case FormatText, FormatJSON:
		*f = value
		return nil
	default:
		return fmt.Errorf("invalid log format %q, must be %q or %q", string(text), FormatText, FormatJSON)
	}
}

type Config struct {
	Format LogFormat `mapstructure:"format" json:"format,omitempty"`
	Level  string    `mapstructure:"level" json:"level,omitempty"`
}

// NewLogger configures the global logrus logger and returns it, so that
// dependencies logging through logrus share the same format.
func NewLogger(cfg Config) (*logrus.Logger, error) {
	return configure(logrus.StandardLogger(), cfg, os.Stdout)
}

func configure(logger *logrus.Logger, cfg Config, out io.Writer) (*logrus.Logger, error) {
	if cfg.Format == FormatJSON {
		logger.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyMsg: "_msg",
			},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	level := logrus.InfoLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("logrus.ParseLevel: %w", err)
		}
		level = parsed
	}

	logger.SetOutput(out)
	logger.SetLevel(level)
	return logger, nil
}
