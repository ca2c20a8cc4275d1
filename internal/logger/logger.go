package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type (
	Field  = zap.Field
	Logger = zap.Logger
)

var (
	String   = zap.String
	Stringer = zap.Stringer
	Int      = zap.Int
	Uint64   = zap.Uint64
	Duration = zap.Duration
	Error    = zap.Error
)

type Config struct {
	// debug, info, warn, error
	Level string
	// caller file:line on every line
	AddCaller bool
	// drop all output, used by tests
	Discard bool
}

func (c *Config) Build() (*Logger, error) {
	lv := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if c.Level != "" {
		if err := lv.UnmarshalText([]byte(c.Level)); err != nil {
			return nil, err
		}
	}

	if c.Discard {
		return zap.NewNop(), nil
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stdout),
		lv,
	)

	opts := []zap.Option{zap.AddStacktrace(zap.DPanicLevel)}
	if c.AddCaller {
		opts = append(opts, zap.AddCaller())
	}

	return zap.New(core, opts...), nil
}

// Nop is handy for tests and for components constructed without a logger.
func Nop() *Logger {
	return zap.NewNop()
}
