package utils

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger creates the process-wide structured logger, writing to the
// console and to a timestamped log file. Falls back to console-only when
// the log file cannot be created.
func NewLogger() zerolog.Logger {
	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}

	var out io.Writer = console
	name := fmt.Sprintf("scraper_log_%s.log", time.Now().Format("20060102_150405"))
	file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err == nil {
		out = zerolog.MultiLevelWriter(console, file)
	}

	level := zerolog.InfoLevel
	if parsed, perr := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); perr == nil && parsed != zerolog.NoLevel {
		level = parsed
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	if err != nil {
		logger.Warn().Err(err).Str("file", name).Msg("log file unavailable, console only")
	}
	return logger
}
