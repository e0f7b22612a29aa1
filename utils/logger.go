package utils

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger provides leveled, printf-style logging throughout the application.
// Console output is human readable; an optional log file receives JSON lines.
type Logger struct {
	sugar  *zap.SugaredLogger
	closer io.Closer
}

// LogOptions configures NewLoggerWithOptions.
type LogOptions struct {
	Level string // debug, info, warn, error; empty means info
	File  string // optional rotated JSON log file
}

// NewLogger creates an info-level Logger writing to stdout/stderr.
func NewLogger() *Logger {
	l, err := NewLoggerWithOptions(LogOptions{})
	if err != nil {
		return NewNopLogger()
	}
	return l
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// NewLoggerWithOptions builds the zap core tree: stdout below ERROR, stderr at
// ERROR and above, plus a lumberjack file core when opts.File is set.
func NewLoggerWithOptions(opts LogOptions) (*Logger, error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, eris.Wrapf(err, "logger: parse level %q", opts.Level)
	}

	console := zapcore.NewConsoleEncoder(consoleEncoderConfig())
	low := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= level && l < zapcore.ErrorLevel
	})
	high := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= level && l >= zapcore.ErrorLevel
	})

	cores := []zapcore.Core{
		zapcore.NewCore(console, zapcore.Lock(zapcore.AddSync(os.Stdout)), low),
		zapcore.NewCore(console, zapcore.Lock(zapcore.AddSync(os.Stderr)), high),
	}

	var closer io.Closer
	if opts.File != "" {
		// no time-based rotation; compress every 200MB
		writer := &lumberjack.Logger{
			Filename:  opts.File,
			MaxSize:   200,
			LocalTime: true,
			Compress:  true,
		}
		closer = writer
		fileEncoder := zapcore.NewJSONEncoder(fileEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(writer), level))
	}

	stackTraceLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= zapcore.DPanicLevel
	})
	z := zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(stackTraceLevel),
	)

	return &Logger{sugar: z.Sugar(), closer: closer}, nil
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cfg.CallerKey = ""
	return cfg
}

func fileEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

// With returns a child Logger carrying the key/value pair on every line.
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{sugar: l.sugar.With(key, value), closer: l.closer}
}

func (l *Logger) Info(format string, args ...any) {
	l.sugar.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.sugar.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.sugar.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.sugar.Debugf(format, args...)
}

// Close flushes buffered entries and closes the log file, if any.
// Lumberjack does not expose Sync, so the file must be closed before exit.
func (l *Logger) Close() error {
	_ = l.sugar.Sync()
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
