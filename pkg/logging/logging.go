// Package logging holds the process-wide zap logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

var (
	log        *zap.SugaredLogger
	baseLogger *zap.Logger
)

// Init initializes the package-level logger.
func Init(debug bool) error {
	var (
		zapLogger *zap.Logger
		err       error
	)
	if debug {
		zapLogger, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		zapLogger, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %w", err)
	}

	baseLogger = zapLogger
	log = zapLogger.Sugar()
	return nil
}

// Zap returns the base logger, for libraries that want one (like gorm).
func Zap() *zap.Logger {
	if baseLogger == nil {
		baseLogger = zap.NewNop()
		log = baseLogger.Sugar()
	}
	return baseLogger
}

// Sugared returns the sugared logger. Before Init it discards everything.
func Sugared() *zap.SugaredLogger {
	if log == nil {
		Zap()
	}
	return log
}

// Sync flushes any buffered log entries.
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

func Debugw(msg string, keysAndValues ...interface{}) {
	Sugared().Debugw(msg, keysAndValues...)
}

func Infof(template string, args ...interface{}) {
	Sugared().Infof(template, args...)
}

func Infow(msg string, keysAndValues ...interface{}) {
	Sugared().Infow(msg, keysAndValues...)
}

func Warnw(msg string, keysAndValues ...interface{}) {
	Sugared().Warnw(msg, keysAndValues...)
}

func Errorw(msg string, keysAndValues ...interface{}) {
	Sugared().Errorw(msg, keysAndValues...)
}

func Fatalf(template string, args ...interface{}) {
	Sugared().Fatalf(template, args...)
}
