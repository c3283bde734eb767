// Package logging is the zerolog setup shared by the CLI, the HTTP server
// and the MCP binary. Once a session is bound every line carries its id,
// and executor lines carry the batch index and command type.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/action"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/types"
)

// Logger is the global logger. It is rebuilt from root whenever the level
// or the bound session changes.
var Logger zerolog.Logger

var (
	root    zerolog.Logger
	session string
)

// Level represents log levels.
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
	Disabled   = zerolog.Disabled
)

// Config holds logger configuration.
type Config struct {
	Level  Level
	Output io.Writer // os.Stderr when nil
	// Pretty switches from JSON lines to zerolog's console writer.
	Pretty     bool
	TimeFormat string
	// Session tags every line with a "session" field when set.
	Session string
}

// DefaultConfig logs INFO and above to stderr as JSON lines.
func DefaultConfig() Config {
	return Config{
		Level:      InfoLevel,
		Output:     os.Stderr,
		TimeFormat: time.RFC3339,
	}
}

// FromAppConfig derives logger settings from an application config. An
// empty logLevel keeps the default level.
func FromAppConfig(app *types.Config) Config {
	cfg := DefaultConfig()
	if app == nil {
		return cfg
	}
	if app.LogLevel != "" {
		cfg.Level = ParseLevel(app.LogLevel)
	}
	cfg.Session = app.Session
	return cfg
}

// Init replaces the global logger.
func Init(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339
	}
	zerolog.TimeFieldFormat = cfg.TimeFormat

	out := cfg.Output
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}
	root = zerolog.New(out).With().Timestamp().Logger()
	session = cfg.Session
	rebuild(cfg.Level)
}

func rebuild(level Level) {
	ctx := root.Level(level).With()
	if session != "" {
		ctx = ctx.Str("session", session)
	}
	Logger = ctx.Logger()
}

// SetLevel changes the minimum level and keeps the bound session.
func SetLevel(level Level) {
	rebuild(level)
}

// BindSession tags every following line with id. An empty id removes the tag.
func BindSession(id string) {
	session = id
	rebuild(Logger.GetLevel())
}

// Apply picks up the log level of a reloaded application config.
func Apply(app *types.Config) {
	if app == nil || app.LogLevel == "" {
		return
	}
	SetLevel(ParseLevel(app.LogLevel))
}

// ParseLevel parses DEBUG, INFO, WARN, ERROR, FATAL or OFF, ignoring case.
// Anything else is INFO.
func ParseLevel(level string) Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return DebugLevel
	case "WARN", "WARNING":
		return WarnLevel
	case "ERROR":
		return ErrorLevel
	case "FATAL":
		return FatalLevel
	case "OFF", "NONE", "DISABLED":
		return Disabled
	}
	return InfoLevel
}

// Component returns a child of the global logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}

// Command returns the executor logger for the command at index in a batch.
func Command(index int, t action.Type) zerolog.Logger {
	return Logger.With().
		Str("component", "executor").
		Int("index", index).
		Str("type", string(t)).
		Logger()
}

func Debug() *zerolog.Event { return Logger.Debug() }

func Info() *zerolog.Event { return Logger.Info() }

func Warn() *zerolog.Event { return Logger.Warn() }

func Error() *zerolog.Event { return Logger.Error() }

func init() {
	Init(DefaultConfig())
}
