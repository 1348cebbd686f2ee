package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/lumberjack"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const DefaultLogName = "uidmap.log"

type LogConfig struct {
	MaxLogFiles int
	MaxSizeMB   int
	LogDir      string
	LogName     string
	Level       string
}

func (c LogConfig) Dir() (string, error) {
	if c.LogDir != "" {
		return c.LogDir, nil
	}
	return os.Getwd()
}

func (c LogConfig) Name() string {
	if c.LogName != "" {
		return c.LogName
	}
	return DefaultLogName
}

func (c LogConfig) Path() (string, error) {
	dir, err := c.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Name()), nil
}

// ParseLevel returns the zerolog level named by s; an empty string is info
func ParseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, errors.Wrapf(err, "invalid log level %q", s)
	}
	return lvl, nil
}

type Logger struct {
	zl  zerolog.Logger
	out io.Closer
}

func (l Logger) WithFields(fs map[string]interface{}) Logger {
	return Logger{
		zl:  l.zl.With().Fields(fs).Logger(),
		out: l.out,
	}
}

// Close releases the log file, if any
func (l Logger) Close() error {
	if l.out == nil {
		return nil
	}
	return l.out.Close()
}

func (l Logger) Logln(v ...interface{}) {
	l.zl.Info().Msg(fmt.Sprint(v...))
}

func (l Logger) Logf(format string, v ...interface{}) {
	l.zl.Info().Msgf(format, v...)
}

func (l Logger) Debugf(format string, v ...interface{}) {
	l.zl.Debug().Msgf(format, v...)
}

func (l Logger) Warnf(format string, v ...interface{}) {
	l.zl.Warn().Msgf(format, v...)
}

func (l Logger) Error(err error, msg string) {
	if err == nil {
		return
	}
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	if v, ok := err.(stackTracer); ok {
		var stacktrace []string
		for _, frame := range v.StackTrace() {
			stacktrace = append(stacktrace, fmt.Sprintf("%+v", frame))
		}
		logger := l.zl.With().Fields(map[string]interface{}{
			"stacktrace": stacktrace,
		}).Logger()
		logger.Error().Err(err).Msg(msg)
	} else {
		l.zl.Error().Err(err).Msg(msg)
	}
}

// NewLogger writes JSON lines to a rolling file at cfg.Path()
func NewLogger(cfg LogConfig) (Logger, error) {
	filename, err := cfg.Path()
	if err != nil {
		return Logger{}, errors.Wrapf(err, "unable to get log directory")
	}
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return Logger{}, err
	}
	logOut := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxLogFiles,
	}
	logger := zerolog.New(logOut).Level(lvl).With().Timestamp().Logger()
	return Logger{
		zl:  logger,
		out: logOut,
	}, nil
}

// NewConsoleLogger writes human readable lines to w
func NewConsoleLogger(w io.Writer, level string) (Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return Logger{}, err
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: true}
	return Logger{
		zl: zerolog.New(out).Level(lvl).With().Timestamp().Logger(),
	}, nil
}

// NewWriterLogger writes JSON lines to w
func NewWriterLogger(w io.Writer, level string) (Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return Logger{}, err
	}
	return Logger{
		zl: zerolog.New(w).Level(lvl).With().Timestamp().Logger(),
	}, nil
}
