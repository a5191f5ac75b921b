package logx

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global logger. Debug mode switches to a human
// console writer with caller info; otherwise plain JSON at info level.
func Init(debug bool) {
	if debug {
		log.Logger = zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = os.Stderr
		})).With().Timestamp().Caller().Logger().Level(zerolog.DebugLevel)
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.InfoLevel)
}

// New returns a logger tagged with the given component name.
func New(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
