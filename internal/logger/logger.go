package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const fileName = "cyclekeeper.log"

// Config controls where and how much the application logs.
type Config struct {
	Level    string
	Encoding string
	// Dir holds the rotating log file. An empty Dir disables file output.
	Dir string
	// Debug tees log output to stderr and forces debug level.
	Debug bool
}

// New builds a zap.Logger writing to a rotating file and, in debug mode, stderr.
func New(cfg Config) (*zap.Logger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.InfoLevel
	if err := level.Set(cfg.Level); err != nil {
		level = zapcore.InfoLevel
	}
	if cfg.Debug {
		level = zapcore.DebugLevel
	}

	var encoder zapcore.Encoder
	switch cfg.Encoding {
	case "console":
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	var sinks []zapcore.WriteSyncer
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, fileName),
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}))
	}
	if cfg.Debug || len(sinks) == 0 {
		sinks = append(sinks, zapcore.Lock(os.Stderr))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)
	return zap.New(core, zap.AddCaller()), nil
}

// FilePath returns the log file location inside dir.
func FilePath(dir string) string {
	return filepath.Join(dir, fileName)
}
