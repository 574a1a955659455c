package logutil

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"pms/config"
)

// DefaultFile is $XDG_CACHE_HOME/pms/pms.log.
func DefaultFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "pms", "pms.log")
}

func getLevel(level string) (zap.AtomicLevel, error) {
	if level == "" {
		return zap.NewAtomicLevelAt(zap.InfoLevel), nil
	}
	return zap.ParseAtomicLevel(level)
}

func getEncoder() zapcore.Encoder {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(encCfg)
}

func getSyncer(cfg config.Log) (zapcore.WriteSyncer, *lumberjack.Logger, error) {
	file := cfg.File
	if file == "" {
		file = DefaultFile()
	}
	if err := os.MkdirAll(filepath.Dir(file), 0750); err != nil {
		return nil, nil, fmt.Errorf("failed to create log dir: %w", err)
	}
	lj := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}
	return zapcore.AddSync(lj), lj, nil
}

// Setup installs a file logger as the global zap logger. The terminal
// belongs to the UI, so nothing is ever logged to stdout or stderr. On
// failure the global logger stays a no-op and the error is returned.
func Setup(cfg config.Log) (func(), error) {
	zap.ReplaceGlobals(zap.NewNop())

	level, err := getLevel(cfg.Level)
	if err != nil {
		return func() {}, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	syncer, lj, err := getSyncer(cfg)
	if err != nil {
		return func() {}, err
	}

	logger := zap.New(zapcore.NewCore(getEncoder(), syncer, level), zap.AddCaller())
	undo := zap.ReplaceGlobals(logger)
	return func() {
		_ = logger.Sync()
		_ = lj.Close()
		undo()
	}, nil
}
