// Package logger builds the zap loggers used across the service and adapts
// them to gin and GORM.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the level, encoding and destination of log output.
// Format is "json" or "console"; Output is "stdout", "stderr" or a file path.
type Config struct {
	Level  string
	Format string
	Output string
}

// New creates a zap logger. Extra cores, such as the OTLP log bridge, receive
// the same entries as the primary writer.
func New(cfg Config, extra ...zapcore.Core) *zap.Logger {
	primary := zapcore.NewCore(encoderFor(cfg.Format), syncerFor(cfg.Output), ParseLevel(cfg.Level))
	return zap.New(
		zapcore.NewTee(append([]zapcore.Core{primary}, extra...)...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
}

// ParseLevel accepts zap level names in any case plus "warning". Anything
// else is info.
func ParseLevel(level string) zapcore.Level {
	if strings.EqualFold(level, "warning") {
		return zapcore.WarnLevel
	}
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func encoderFor(format string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	ec.EncodeDuration = zapcore.MillisDurationEncoder
	if format == "console" {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewJSONEncoder(ec)
}

// syncerFor falls back to stdout when the log file cannot be opened
func syncerFor(output string) zapcore.WriteSyncer {
	switch strings.ToLower(output) {
	case "", "stdout":
		return zapcore.Lock(os.Stdout)
	case "stderr":
		return zapcore.Lock(os.Stderr)
	}
	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return zapcore.Lock(os.Stdout)
	}
	return zapcore.AddSync(f)
}
