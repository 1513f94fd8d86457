// Package logging provides named loggers for the verification pipeline.
// All loggers share one atomic level so SetLevel applies retroactively.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var level = zap.NewAtomicLevelAt(zap.InfoLevel)

// Logger is the logging interface used throughout the module.
// It is satisfied by zap.SugaredLogger.
type Logger interface {
	Debug(args ...any)
	Debugf(template string, args ...any)
	Info(args ...any)
	Infof(template string, args ...any)
	Warn(args ...any)
	Warnf(template string, args ...any)
	Error(args ...any)
	Errorf(template string, args ...any)
}

func parseLevel(name string) zapcore.Level {
	switch strings.ToLower(name) {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// SetLevel sets the shared log level. Unknown names fall back to info.
func SetLevel(name string) {
	level.SetLevel(parseLevel(name))
}

// New returns a named logger writing to stderr. Setting PERSONA_LOG_TYPE=json
// switches to the JSON production encoder; otherwise the console encoder is
// used, colored when stderr is a terminal.
func New(name string) Logger {
	var config zap.Config
	if strings.ToLower(os.Getenv("PERSONA_LOG_TYPE")) == "json" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
			config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
	}
	config.Level = level
	l, err := config.Build()
	if err != nil {
		panic(err)
	}
	return l.Sugar().Named(name)
}

// NewWithDest returns a named logger writing to dest. Used by tests to
// capture output.
func NewWithDest(dest io.Writer, name string) Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(dest),
		level,
	)
	return zap.New(core).Sugar().Named(name)
}
