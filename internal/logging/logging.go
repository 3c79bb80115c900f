// Package logging provides the levelled loggers used across the board.
//
// Every logger shares one level, so SetLogLevel also applies to loggers
// created before the call. Components attach the session, owner and peer
// they work for with the With helpers.
package logging

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the sugared zap logger handed to every component.
type Logger = *zap.SugaredLogger

// Keys of the fields attached by the With helpers.
const (
	KeySession = "session"
	KeyOwner   = "owner"
	KeyPeer    = "peer"
)

var (
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	// newCore builds the core of new loggers. Tests swap it for an observer.
	newCore = consoleCore

	defaultLogger Logger
	defaultOnce   sync.Once
)

// SetLogLevel changes the level of every logger, e.g. "debug" or "warn".
func SetLogLevel(name string) error {
	l, err := zapcore.ParseLevel(name)
	if err != nil {
		return err
	}
	level.SetLevel(l)
	return nil
}

// Level returns the current level.
func Level() zapcore.Level {
	return level.Level()
}

// New creates a logger named after a component.
func New(name string, keysAndValues ...interface{}) Logger {
	logger := zap.New(newCore(), zap.AddStacktrace(zap.ErrorLevel)).Named(name).Sugar()
	if len(keysAndValues) > 0 {
		logger = logger.With(keysAndValues...)
	}
	return logger
}

// ForSession creates the logger of a component serving a session.
func ForSession(name, session string) Logger {
	return New(name, KeySession, session)
}

// WithSession tags logger with a session name.
func WithSession(logger Logger, session string) Logger {
	return logger.With(KeySession, session)
}

// WithOwner tags logger with the participant it acts for.
func WithOwner(logger Logger, owner string) Logger {
	return logger.With(KeyOwner, owner)
}

// WithPeer tags logger with the remote address of a connection.
func WithPeer(logger Logger, addr string) Logger {
	return logger.With(KeyPeer, addr)
}

// DefaultLogger returns the process wide logger.
func DefaultLogger() Logger {
	defaultOnce.Do(func() {
		defaultLogger = New("collabboard")
	})
	return defaultLogger
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return zap.NewNop().Sugar()
}

func consoleCore() zapcore.Core {
	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:        "T",
			LevelKey:       "L",
			NameKey:        "N",
			CallerKey:      "C",
			MessageKey:     "M",
			StacktraceKey:  "S",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		}),
		zapcore.Lock(os.Stderr),
		level,
	)
}
