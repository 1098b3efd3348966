// Package llog provides structured logging for the lane storage engine
// using zerolog. Components that log (archive, archiver, sync FSM, verifier
// pool) derive a child logger tagged with their component name via
// WithComponent at the call site; WithLane additionally tags a lane id.
package llog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide logger instance. Init must be called once
// before any component logger is derived from it; until then it defaults
// to a console writer at info level so tests don't need to call Init.
var Logger zerolog.Logger

// Level mirrors the handful of severities the engine actually uses.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config configures the global logger.
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

func init() {
	Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}

// Init (re)configures the global logger.
func Init(cfg Config) {
	var level zerolog.Level
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	if cfg.JSONOutput {
		Logger = zerolog.New(output).With().Timestamp().Logger()
	} else {
		Logger = zerolog.New(zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	}
}

// WithComponent returns a child logger tagged with the given component name.
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithLane returns a child logger tagged with both a component and a lane id,
// the two axes every lane-scoped component is filtered by.
func WithLane(component string, laneID uint32) zerolog.Logger {
	return Logger.With().Str("component", component).Uint32("lane_id", laneID).Logger()
}
