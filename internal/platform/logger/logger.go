package logger

import (
	"os"
	"strings"

	"github.com/nulzo/neurix/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger from configuration. Format is one of json, console or
// pretty; pretty is the console format with highlighted JSON fields.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	format := strings.ToLower(cfg.Format)
	if format == "" {
		format = "console"
	}
	color := cfg.Color && colorAllowed()

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if format != "json" {
		encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
		encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		if color {
			encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		}
	}
	if format == "pretty" && !color {
		format = "console"
	}

	level := ParseLevel(cfg.Level)
	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Encoding:          format,
		EncoderConfig:     encoderConfig,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: level != zapcore.DebugLevel,
	}

	return zapConfig.Build()
}

func ParseLevel(lvl string) zapcore.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// colorAllowed honors NO_COLOR (https://no-color.org/).
func colorAllowed() bool {
	_, noColor := os.LookupEnv("NO_COLOR")
	return !noColor
}
