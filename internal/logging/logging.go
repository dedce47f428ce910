// Package logging builds the process logger: warnings on the console and a
// rotated JSON log in the state directory.
package logging

import (
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const FileName = "voicemsg.log"

type Options struct {
	// Level applies to the log file: debug, info, warn or error.
	Level    string
	StateDir string
	Console  io.Writer
}

// Logger is a zap logger whose console verbosity can be raised after
// construction.
type Logger struct {
	*zap.Logger

	console zap.AtomicLevel
	rotator *lumberjack.Logger
}

func New(opts Options) (*Logger, error) {
	fileLevel := zapcore.InfoLevel
	if opts.Level != "" {
		if err := fileLevel.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}

	l := &Logger{console: zap.NewAtomicLevelAt(zapcore.WarnLevel)}
	var cores []zapcore.Core
	if opts.Console != nil {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.TimeKey = ""
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.AddSync(opts.Console),
			l.console,
		))
	}
	if opts.StateDir != "" {
		l.rotator = &lumberjack.Logger{
			Filename:   filepath.Join(opts.StateDir, FileName),
			MaxSize:    5, // megabytes
			MaxBackups: 3,
			MaxAge:     28,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(l.rotator),
			fileLevel,
		))
	}

	l.Logger = zap.New(zapcore.NewTee(cores...))
	return l, nil
}

// SetVerbose switches console output between warn and debug.
func (l *Logger) SetVerbose(verbose bool) {
	if verbose {
		l.console.SetLevel(zapcore.DebugLevel)
		return
	}
	l.console.SetLevel(zapcore.WarnLevel)
}

// Close flushes buffered entries and closes the log file.
func (l *Logger) Close() {
	_ = l.Sync()
	if l.rotator != nil {
		_ = l.rotator.Close()
	}
}
