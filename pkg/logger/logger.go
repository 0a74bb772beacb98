package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var (
	log     = newLogger(os.Stdout, nil, INFO)
	logFile *os.File
)

const (
	INFO = iota
	DEBUG
)

func newLogger(console io.Writer, file io.Writer, level int) zerolog.Logger {
	var w io.Writer = zerolog.ConsoleWriter{Out: console, TimeFormat: time.DateTime}
	if file != nil {
		w = zerolog.MultiLevelWriter(w, file)
	}
	lvl := zerolog.InfoLevel
	if level == DEBUG {
		lvl = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// InitLogger initializes the logger with console output and, when filename
// is set, JSON lines appended to that file.
func InitLogger(filename string, level int) error {
	if filename == "" {
		log = newLogger(os.Stdout, nil, level)
		return nil
	}
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file '%s': %w", filename, err)
	}
	logFile = f
	log = newLogger(os.Stdout, f, level)
	return nil
}

// SetOutput redirects all logging to w. Used by tests.
func SetOutput(w io.Writer) {
	log = zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// L returns the underlying structured logger.
func L() *zerolog.Logger {
	return &log
}

func Debugf(format string, v ...interface{}) {
	log.Debug().Msgf(format, v...)
}

func Info(format string, v ...interface{}) {
	log.Info().Msgf(format, v...)
}

func Infof(format string, v ...interface{}) {
	Info(format, v...)
}

func Error(format string, v ...interface{}) {
	log.Error().Msgf(format, v...)
}

func Errorf(format string, v ...interface{}) {
	Error(format, v...)
}

func Warn(format string, v ...interface{}) {
	log.Warn().Msgf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	Warn(format, v...)
}
