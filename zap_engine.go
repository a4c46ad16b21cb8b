package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ZapEngine is an alternate Engine built on go.uber.org/zap. It emits the
// same record schema as ZerologEngine, so the two are interchangeable
// behind the facade.
type ZapEngine struct {
	logger *zap.Logger
}

// NewZapEngine builds the engine from cfg with a JSON encoder and a
// zapcore tee across the enabled channels.
func NewZapEngine(cfg Config) (*ZapEngine, error) {
	cfg = cfg.withDefaults()

	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("setting logging level: %w", err)
	}
	zl := zapLevel(level)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.MessageKey = FieldMessage
	encCfg.LevelKey = FieldLevel
	encCfg.TimeKey = "time"
	if !cfg.WithTimestamp {
		encCfg.TimeKey = zapcore.OmitKey
	}
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	enc := zapcore.NewJSONEncoder(encCfg)

	var cores []zapcore.Core
	if cfg.FileLogging {
		if err := os.MkdirAll(cfg.RelLogFileDir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create logs directory: %w", err)
		}
		fileSink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(cfg.RelLogFileDir, cfg.LogFileName),
			MaxBackups: cfg.LogFileMaxBackups,
			MaxAge:     cfg.LogFileMaxAgeDays,
			MaxSize:    cfg.LogFileMaxSizeMB,
			Compress:   cfg.LogFileCompress,
		})
		cores = append(cores, zapcore.NewCore(enc, fileSink, zl))
	}
	if cfg.ConsoleLogging {
		cores = append(cores, zapcore.NewCore(enc, zapcore.Lock(os.Stderr), zl))
	}

	return &ZapEngine{logger: zap.New(zapcore.NewTee(cores...))}, nil
}

func zapLevel(l Level) zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

func (e *ZapEngine) Log(level Level, message string, meta map[string]any) {
	if e == nil || e.logger == nil {
		return
	}
	fields := zapFields(meta)
	switch level {
	case LevelDebug:
		e.logger.Debug(message, fields...)
	case LevelWarn:
		e.logger.Warn(message, fields...)
	case LevelError:
		e.logger.Error(message, fields...)
	default:
		e.logger.Info(message, fields...)
	}
}

func zapFields(meta map[string]any) []zap.Field {
	m := sanitizeMeta(meta)
	fields := make([]zap.Field, 0, len(m))
	for k, v := range m {
		fields = append(fields, zap.Any(k, v))
	}
	return fields
}

func (e *ZapEngine) Debug(message string, meta map[string]any) {
	e.Log(LevelDebug, message, meta)
}

func (e *ZapEngine) Info(message string, meta map[string]any) {
	e.Log(LevelInfo, message, meta)
}

func (e *ZapEngine) Warn(message string, meta map[string]any) {
	e.Log(LevelWarn, message, meta)
}

func (e *ZapEngine) Error(message string, meta map[string]any) {
	e.Log(LevelError, message, meta)
}

// Close flushes buffered entries. Sync errors on terminal outputs are
// expected and ignored.
func (e *ZapEngine) Close() error {
	if e == nil || e.logger == nil {
		return nil
	}
	_ = e.logger.Sync()
	return nil
}
