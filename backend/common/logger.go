package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	loggerMu sync.RWMutex
	logger   = zap.NewNop().Sugar()
)

// Logger returns the process logger. It is a no-op logger until SetupLogger runs.
func Logger() *zap.SugaredLogger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// SetupLogger builds the zap logger used by SysLog, SysError and FatalLog.
func SetupLogger(level string) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	if gin.Mode() == gin.DebugMode {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if *LogDir != "" {
		if err := os.MkdirAll(*LogDir, 0o755); err != nil {
			return fmt.Errorf("create log directory %s: %w", *LogDir, err)
		}
		cfg.OutputPaths = append(cfg.OutputPaths, filepath.Join(*LogDir, "mediafeed.log"))
	}

	built, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}

	loggerMu.Lock()
	logger = built.Sugar()
	loggerMu.Unlock()
	return nil
}

// SetupGinLog sends gin's access and error output to the log directory as well as stdout.
func SetupGinLog() {
	if *LogDir == "" {
		return
	}
	if err := os.MkdirAll(*LogDir, 0o755); err != nil {
		FatalLog("failed to create log directory: " + err.Error())
	}
	logPath := filepath.Join(*LogDir, fmt.Sprintf("gin-%s.log", time.Now().Format("20060102")))
	fd, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		FatalLog("failed to open log file: " + err.Error())
	}
	gin.DefaultWriter = io.MultiWriter(os.Stdout, fd)
	gin.DefaultErrorWriter = io.MultiWriter(os.Stderr, fd)
}

func SysLog(s string, keysAndValues ...interface{}) {
	Logger().Infow(s, keysAndValues...)
}

func SysError(s string, keysAndValues ...interface{}) {
	Logger().Errorw(s, keysAndValues...)
}

func FatalLog(v ...any) {
	Logger().Fatal(v...)
}

func SyncLog() {
	_ = Logger().Sync()
}
