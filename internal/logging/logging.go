// Package logging provides the categorized structured loggers the service
// emits audit events through. Each category gets its own append-only file
// next to a shared console stream; rotation and shipping are handled by the
// surrounding infrastructure, not here.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

const (
	CategoryAuth    = "auth"
	CategoryActions = "actions"
	CategoryEvents  = "events"
)

// Loggers bundles the per-category loggers handed to services.
type Loggers struct {
	Auth    zerolog.Logger
	Actions zerolog.Logger
	Events  zerolog.Logger

	files []*os.File
}

// Setup opens the per-category log files under dir and builds the loggers.
// A missing or unwritable directory degrades to console-only logging rather
// than failing startup.
func Setup(dir, level string) *Loggers {
	zerolog.SetGlobalLevel(parseLevel(level))

	l := &Loggers{}
	l.Auth = l.category(dir, CategoryAuth)
	l.Actions = l.category(dir, CategoryActions)
	l.Events = l.category(dir, CategoryEvents)
	return l
}

// NewTestLoggers returns silent loggers for use in tests.
func NewTestLoggers() *Loggers {
	nop := zerolog.Nop()
	return &Loggers{Auth: nop, Actions: nop, Events: nop}
}

func (l *Loggers) category(dir, name string) zerolog.Logger {
	writers := []io.Writer{os.Stdout}

	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err == nil {
			path := filepath.Join(dir, name+".log")
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err == nil {
				l.files = append(l.files, f)
				writers = append(writers, f)
			}
		}
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Str("category", name).
		Logger()
}

// Close releases the category log files. Call at shutdown.
func (l *Loggers) Close() {
	for _, f := range l.files {
		f.Close()
	}
}

func parseLevel(s string) zerolog.Level {
	switch s {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
