package utils

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger 全局日志器
// 初始化前为空操作日志器,测试中无需调用InitLogger
var Logger = zerolog.Nop()

const (
	mainLogFileName  = "web_downloader.log"
	errorLogFileName = "web_downloader_error.log"
)

// LogConfig 日志配置
type LogConfig struct {
	Level      string    `mapstructure:"level"`       // 日志级别: trace, debug, info, warn, error, fatal, panic
	LogDir     string    `mapstructure:"dir"`         // 日志目录
	MaxSize    int       `mapstructure:"max_size"`    // 单个日志文件最大大小(MB)
	MaxBackups int       `mapstructure:"max_backups"` // 保留的旧日志文件数量
	MaxAge     int       `mapstructure:"max_age"`     // 保留天数
	Compress   bool      `mapstructure:"compress"`    // 是否压缩旧日志
	Console    io.Writer `mapstructure:"-"`           // 控制台输出(默认os.Stdout)
}

// DefaultLogConfig 默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		LogDir:     "logs",
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
}

var (
	logFilesMu sync.Mutex
	logFiles   []*lumberjack.Logger
)

// InitLogger 初始化日志系统
func InitLogger(config LogConfig) error {
	// 创建日志目录
	if err := os.MkdirAll(config.LogDir, 0755); err != nil {
		return err
	}

	// 解析日志级别
	level, err := zerolog.ParseLevel(config.Level)
	if err != nil || config.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// 主日志文件(带轮转)
	mainLogFile := &lumberjack.Logger{
		Filename:   filepath.Join(config.LogDir, mainLogFileName),
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
	}

	// 错误日志文件(带轮转)
	errorLogFile := &lumberjack.Logger{
		Filename:   filepath.Join(config.LogDir, errorLogFileName),
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
	}

	console := config.Console
	if console == nil {
		console = os.Stdout
	}

	// 彩色控制台输出
	consoleWriter := zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: time.RFC3339,
		NoColor:    console != os.Stdout,
	}

	// 多输出配置:
	// 1. 彩色控制台输出
	// 2. 主日志文件(所有级别)
	// 3. 错误日志文件(仅错误及以上级别)
	multiWriter := zerolog.MultiLevelWriter(
		consoleWriter,
		mainLogFile,
		&FilteredWriter{Writer: errorLogFile, MinLevel: zerolog.ErrorLevel},
	)

	closeLogFiles()
	logFilesMu.Lock()
	logFiles = []*lumberjack.Logger{mainLogFile, errorLogFile}
	logFilesMu.Unlock()

	// 初始化全局logger
	Logger = zerolog.New(multiWriter).
		With().
		Timestamp().
		Logger()

	// 设置全局logger
	log.Logger = Logger

	Logger.Debug().
		Str("level", level.String()).
		Str("log_dir", config.LogDir).
		Msg("日志系统初始化完成")

	return nil
}

// CloseLogger 关闭日志文件
func CloseLogger() {
	closeLogFiles()
	Logger = zerolog.Nop()
	log.Logger = Logger
}

func closeLogFiles() {
	logFilesMu.Lock()
	defer logFilesMu.Unlock()

	for _, f := range logFiles {
		_ = f.Close()
	}
	logFiles = nil
}

// FilteredWriter 过滤写入器,仅写入指定级别及以上的日志
// 与zerolog.MultiLevelWriter配合使用,级别信息由WriteLevel传入
type FilteredWriter struct {
	Writer   io.Writer
	MinLevel zerolog.Level
}

// Write 实现io.Writer接口
// 无级别信息时丢弃
func (w *FilteredWriter) Write(p []byte) (n int, err error) {
	return len(p), nil
}

// WriteLevel 带级别的写入
func (w *FilteredWriter) WriteLevel(level zerolog.Level, p []byte) (n int, err error) {
	if level >= w.MinLevel && level != zerolog.NoLevel {
		return w.Writer.Write(p)
	}
	return len(p), nil
}

// Info 快捷方法: 信息日志
func Info(msg string) {
	Logger.Info().Msg(msg)
}

// Infof 快捷方法: 格式化信息日志
func Infof(format string, args ...interface{}) {
	Logger.Info().Msgf(format, args...)
}

// Error 快捷方法: 错误日志
func Error(err error, msg string) {
	Logger.Error().Err(err).Msg(msg)
}

// Errorf 快捷方法: 格式化错误日志
func Errorf(format string, args ...interface{}) {
	Logger.Error().Msgf(format, args...)
}

// Warn 快捷方法: 警告日志
func Warn(msg string) {
	Logger.Warn().Msg(msg)
}

// Warnf 快捷方法: 格式化警告日志
func Warnf(format string, args ...interface{}) {
	Logger.Warn().Msgf(format, args...)
}

// Debug 快捷方法: 调试日志
func Debug(msg string) {
	Logger.Debug().Msg(msg)
}

// Debugf 快捷方法: 格式化调试日志
func Debugf(format string, args ...interface{}) {
	Logger.Debug().Msgf(format, args...)
}
