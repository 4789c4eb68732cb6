package internal

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var (
	logLevel    = LogLevelInfo
	atomicLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger      = newLogger(zapcore.Lock(os.Stderr))
)

// newLogger builds the console logger all Log* helpers write through.
func newLogger(out zapcore.WriteSyncer) *zap.SugaredLogger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), out, atomicLevel)
	return zap.New(core).Sugar()
}

// SetLogOutput redirects log output, mostly for tests
func SetLogOutput(out zapcore.WriteSyncer) {
	logger = newLogger(out)
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	logLevel = level
	switch level {
	case LogLevelError:
		atomicLevel.SetLevel(zapcore.ErrorLevel)
	case LogLevelWarn:
		atomicLevel.SetLevel(zapcore.WarnLevel)
	case LogLevelInfo:
		atomicLevel.SetLevel(zapcore.InfoLevel)
	default:
		atomicLevel.SetLevel(zapcore.DebugLevel)
	}
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		SetLogLevel(LogLevelDebug)
	} else {
		SetLogLevel(LogLevelInfo)
	}
}

// SyncLogger flushes buffered log entries.
func SyncLogger() {
	_ = logger.Sync()
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}

// LogWarn logs a warning message
func LogWarn(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

// LogInfo logs an info message
func LogInfo(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

// LogDebug logs a debug message
func LogDebug(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

// LogFields logs a structured message at the given level with key/value pairs.
func LogFields(level LogLevel, msg string, keysAndValues ...interface{}) {
	switch level {
	case LogLevelError:
		logger.Errorw(msg, keysAndValues...)
	case LogLevelWarn:
		logger.Warnw(msg, keysAndValues...)
	case LogLevelInfo:
		logger.Infow(msg, keysAndValues...)
	default:
		logger.Debugw(msg, keysAndValues...)
	}
}
