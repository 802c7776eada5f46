package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/3Eeeecho/go-docmanager/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log  *zap.Logger
	once sync.Once
)

// InitLogger 初始化 Zap 日志库，日志文件所在目录不存在时自动创建
func InitLogger(cfg config.LogConfig) {
	once.Do(func() {
		log = build(cfg)
		zap.ReplaceGlobals(log)
	})
}

func build(cfg config.LogConfig) *zap.Logger {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(cfg.Level)); err != nil {
		l = zap.InfoLevel
		fmt.Fprintf(os.Stderr, "Failed to parse log level '%s', defaulting to info: %v\n", cfg.Level, err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(l)
	zc.OutputPaths = withStd(cfg.OutputPath, "stdout")
	zc.ErrorOutputPaths = withStd(cfg.ErrorPath, "stderr")
	zc.Encoding = "json"
	zc.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	built, err := zc.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build zap logger: %v", err))
	}
	return built
}

// withStd 把文件路径与标准输出组合，文件路径为空或等于标准流时只保留标准流
func withStd(path, std string) []string {
	if path == "" || path == "stdout" || path == "stderr" {
		return []string{std}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create log dir '%s': %v\n", dir, err)
			return []string{std}
		}
	}
	return []string{path, std}
}

// 返回全局logger
func GetLogger() *zap.Logger {
	if log == nil {
		// 在 InitLogger 之前被调用时只输出到标准流
		InitLogger(config.LogConfig{Level: "info"})
	}
	return log
}

// Sugar 返回 Zap 的 SugaredLogger
func Sugar() *zap.SugaredLogger {
	return GetLogger().Sugar()
}

// 刷新缓冲区,确保程序退出前使用
func Sync() {
	if log != nil {
		if err := log.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to sync zap logger: %v\n", err)
		}
	}
}

func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	GetLogger().Fatal(msg, fields...)
}

// OptionalUint64 用于记录可为空的 ID 字段，nil 时省略该字段
func OptionalUint64(key string, v *uint64) zap.Field {
	if v == nil {
		return zap.Skip()
	}
	return zap.Uint64(key, *v)
}
