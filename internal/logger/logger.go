// Package logger configures the process-wide zerolog logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Options selects the level, format and destination of the logger.
type Options struct {
	// Level is one of zerolog's level strings: trace, debug, info,
	// warn, error. Empty means info.
	Level string
	// Format is FormatJSON or FormatConsole. Empty means console.
	Format string
	// Output is "stdout", "stderr" or a file path. Empty means stderr.
	Output string
}

// New builds a logger from opts. The returned closer is non-nil when
// the output is a file and must be closed on shutdown; for stdout and
// stderr it is nil.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("logger: invalid level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	var (
		sink   io.Writer
		closer io.Closer
	)
	switch opts.Output {
	case "", "stderr":
		sink = os.Stderr
	case "stdout":
		sink = os.Stdout
	default:
		f, err := os.OpenFile(opts.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("logger: opening %s: %w", opts.Output, err)
		}
		sink = f
		closer = f
	}

	switch opts.Format {
	case "", FormatConsole:
		sink = zerolog.ConsoleWriter{Out: sink, TimeFormat: time.RFC3339}
	case FormatJSON:
		// zerolog writes JSON natively.
	default:
		if closer != nil {
			closer.Close()
		}
		return zerolog.Nop(), nil, fmt.Errorf("logger: unknown format %q", opts.Format)
	}

	log := zerolog.New(sink).Level(level).With().Timestamp().Logger()
	return log, closer, nil
}
