package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is the process-wide logger. It defaults to plain stderr output so
// packages can log before Init reconfigures it (and so tests need no setup).
var Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Init configures the global logger. Pretty enables console formatting for
// local development; production deployments log JSON lines.
func Init(service, level string, pretty bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var out zerolog.Logger
	if pretty {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		out = zerolog.New(os.Stdout)
	}
	Logger = out.With().Timestamp().Str("service", service).Logger()
}

func Debug() *zerolog.Event { return Logger.Debug() }
func Info() *zerolog.Event  { return Logger.Info() }
func Warn() *zerolog.Event  { return Logger.Warn() }
func Error() *zerolog.Event { return Logger.Error() }
func Fatal() *zerolog.Event { return Logger.Fatal() }
