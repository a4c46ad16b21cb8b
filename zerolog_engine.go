package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ZerologEngine is the reference Engine. It emits one JSON object per
// record through rs/zerolog, with optional console and rolling-file
// channels sharing a single multiwriter.
type ZerologEngine struct {
	logger     zerolog.Logger
	fileWriter *lumberjack.Logger
}

// NewZerologEngine builds the engine from cfg. The log directory is
// created eagerly so a misconfigured path surfaces here instead of being
// swallowed on the first write.
func NewZerologEngine(cfg Config) (*ZerologEngine, error) {
	cfg = cfg.withDefaults()

	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("setting logging level: %w", err)
	}

	e := &ZerologEngine{}

	var writers []io.Writer
	if cfg.FileLogging {
		dir := cfg.RelLogFileDir
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create logs directory: %w", err)
		}
		e.fileWriter = newRollingFileWriter(cfg)
		writers = append(writers, e.fileWriter)
	}
	if cfg.ConsoleLogging {
		writers = append(writers, consoleWriter(cfg))
	}

	logger := zerolog.New(io.MultiWriter(writers...)).Level(zerologLevel(level))
	if cfg.WithTimestamp {
		logger = logger.With().Timestamp().Logger()
	}
	e.logger = logger
	return e, nil
}

func newRollingFileWriter(cfg Config) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(cfg.RelLogFileDir, cfg.LogFileName),
		MaxBackups: cfg.LogFileMaxBackups,
		MaxAge:     cfg.LogFileMaxAgeDays,
		MaxSize:    cfg.LogFileMaxSizeMB,
		Compress:   cfg.LogFileCompress,
	}
}

func consoleWriter(cfg Config) io.Writer {
	if !cfg.ConsolePretty {
		return os.Stderr
	}
	return zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    cfg.ConsoleNoColor,
		TimeFormat: cfg.ConsoleTimeFormat,
	}
}

func zerologLevel(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}

// Log emits one record. Disabled levels cost a single nil check because
// zerolog hands out nil events below the logger threshold.
func (e *ZerologEngine) Log(level Level, message string, meta map[string]any) {
	if e == nil {
		return
	}
	var ev *zerolog.Event
	switch level {
	case LevelDebug:
		ev = e.logger.Debug()
	case LevelWarn:
		ev = e.logger.Warn()
	case LevelError:
		ev = e.logger.Error()
	default:
		ev = e.logger.Info()
	}
	ev.Fields(sanitizeMeta(meta)).Msg(message)
}

func (e *ZerologEngine) Debug(message string, meta map[string]any) {
	e.Log(LevelDebug, message, meta)
}

func (e *ZerologEngine) Info(message string, meta map[string]any) {
	e.Log(LevelInfo, message, meta)
}

func (e *ZerologEngine) Warn(message string, meta map[string]any) {
	e.Log(LevelWarn, message, meta)
}

func (e *ZerologEngine) Error(message string, meta map[string]any) {
	e.Log(LevelError, message, meta)
}

// Close releases the rolling file writer, if any.
func (e *ZerologEngine) Close() error {
	if e == nil || e.fileWriter == nil {
		return nil
	}
	return e.fileWriter.Close()
}
