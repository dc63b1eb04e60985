package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// TimeLayout is the timestamp written at the start of every record.
const TimeLayout = "2006-01-02 15:04:05"

// Options configure a log sink.
type Options struct {
	// Path of the append-mode log file. Empty disables the file.
	Path string
	// Mirror copies every record to the console as well.
	Mirror bool
	Level  zapcore.Level

	MaxSizeMB  int
	MaxBackups int
	MaxAge     int
	Compress   bool

	// Console overrides the mirror destination; defaults to stderr.
	Console io.Writer
}

// New builds a logger writing "[timestamp] LEVEL: message" records to the
// configured file and, optionally, the console. The returned close function
// flushes and releases the file.
func New(opts Options) (*zap.SugaredLogger, func() error, error) {
	var cores []zapcore.Core
	var rotator *lumberjack.Logger

	if opts.Path != "" {
		dir := filepath.Dir(opts.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		rotator = &lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAge,
			Compress:   opts.Compress,
		}
		cores = append(cores, zapcore.NewCore(newEncoder(), zapcore.AddSync(rotator), opts.Level))
	}

	if opts.Mirror || opts.Path == "" {
		out := opts.Console
		if out == nil {
			out = os.Stderr
		}
		cores = append(cores, zapcore.NewCore(newEncoder(), zapcore.Lock(zapcore.AddSync(out)), opts.Level))
	}

	logger := zap.New(zapcore.NewTee(cores...)).Sugar()
	closeFn := func() error {
		_ = logger.Sync()
		if rotator != nil {
			return rotator.Close()
		}
		return nil
	}
	return logger, closeFn, nil
}

// Console returns a logger that writes status records to w (stderr when nil).
func Console(w io.Writer, level zapcore.Level) *zap.SugaredLogger {
	if w == nil {
		w = os.Stderr
	}
	core := zapcore.NewCore(newEncoder(), zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core).Sugar()
}

// ParseLevel converts "debug", "info", "warn" or "error" to a zap level.
// Unknown strings default to info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func newEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       encodeTime,
		EncodeLevel:      encodeLevel,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	})
}

func encodeTime(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + t.Format(TimeLayout) + "]")
}

func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	name := l.CapitalString()
	if l == zapcore.WarnLevel {
		name = "WARNING"
	}
	enc.AppendString(name + ":")
}
