package monitoring

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	level = zap.NewAtomicLevelAt(zap.InfoLevel)
	base  *zap.Logger
)

// Logf is the package-level diagnostic logger. It defaults to a zap sugared
// logger writing to stderr but may be replaced by SetLogger. Tests or
// production code can redirect or mute it.
var Logf func(format string, v ...interface{})

// debugf receives Debugf output. It follows SetLogger.
var debugf func(format string, v ...interface{})

func init() {
	useZap(newZapLogger())
}

func newZapLogger() *zap.Logger {
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	cfg := zap.Config{
		Level:             level,
		Development:       false,
		Encoding:          "console",
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     true,
		DisableStacktrace: true,
	}

	logger, err := cfg.Build()
	if err != nil {
		// stderr sinks cannot fail to open; fall back rather than panic.
		return zap.NewNop()
	}
	return logger
}

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		f = func(string, ...interface{}) {}
	}
	Logf = f
	debugf = f
}

// useZap routes Logf and Debugf to l at info and debug level.
func useZap(l *zap.Logger) {
	base = l
	Logf = l.Sugar().Infof
	debugf = l.Sugar().Debugf
}

// Debugf logs at debug level, or through the SetLogger hook, only when the
// level is debug.
func Debugf(format string, v ...interface{}) {
	if level.Enabled(zapcore.DebugLevel) {
		debugf(format, v...)
	}
}

// SetLevel changes the minimum level: "debug", "info", "warn" or "error".
func SetLevel(name string) error {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}
	level.SetLevel(l)
	return nil
}

// Level returns the current minimum level name.
func Level() string {
	return level.Level().String()
}

// Logger returns the structured zap logger behind the default Logf.
func Logger() *zap.Logger {
	return base
}
