package logger

import (
	"io"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger: JSON lines on stdout, RFC3339Nano timestamps
// rendered in loc, and the minimum level parsed from level ("debug", "info", ...).
// An unknown level falls back to info.
func New(level string, loc *time.Location) (*zap.Logger, error) {
	return NewWith(func(cfg *zap.Config) {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			lvl = zapcore.InfoLevel
		}
		cfg.Level.SetLevel(lvl)
		cfg.EncoderConfig.EncodeTime = timeEncoder(loc)
	})
}

// NewWith returns a logger from a modified production [zap.Config].
func NewWith(cfgFn func(*zap.Config)) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.DisableStacktrace = true
	cfgFn(&cfg)

	return cfg.Build()
}

// NewWriter returns a logger that writes JSON lines to w at debug level and
// above, using the same field names and time format as New.
func NewWriter(w io.Writer, loc *time.Location) *zap.Logger {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "ts"
	ec.MessageKey = "msg"
	ec.EncodeTime = timeEncoder(loc)

	core := zapcore.NewCore(zapcore.NewJSONEncoder(ec), zapcore.AddSync(w), zapcore.DebugLevel)
	return zap.New(core)
}

func timeEncoder(loc *time.Location) zapcore.TimeEncoder {
	if loc == nil {
		loc = time.UTC
	}
	return func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.In(loc).Format(time.RFC3339Nano))
	}
}
