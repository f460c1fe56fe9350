package glog

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	loggerValue  atomic.Value // *zap.Logger
	sugaredValue atomic.Value // *zap.SugaredLogger
	atomicLevel  = zap.NewAtomicLevel()
)

func init() {
	Init(DefaultConfig())
}

// Init 初始化全局 logger
// cfg: 配置对象，如果为 nil 则保持当前 logger
func Init(cfg *Config) {
	if cfg == nil {
		return
	}
	atomicLevel.SetLevel(ParseLevel(cfg.Level))
	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "M",
		LevelKey:       "L",
		TimeKey:        "T",
		CallerKey:      "C",
		NameKey:        "N",
		StacktraceKey:  "S",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05.000000Z0700"),
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	cores := make([]zapcore.Core, 0, 2)
	if cfg.Path != "" {
		// 创建文件写入器
		loggerWriter := newWriter(cfg.Path, cfg.File)
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(loggerWriter), atomicLevel))
	}
	if cfg.PrintConsole {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stdout), atomicLevel))
	}
	zapOpts := []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
	}
	SetLogger(zap.New(zapcore.NewTee(cores...), zapOpts...))
}

// SetLogger 替换全局 logger，测试中可传入 zaptest/observer 构造的 logger
func SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	// 包级函数多包了一层调用栈
	wrapped := logger.WithOptions(zap.AddCallerSkip(1))
	loggerValue.Store(logger)
	sugaredValue.Store(wrapped.Sugar())
}

// Stop 停止 logger，同步所有缓冲的日志
func Stop() {
	if l := L(); l != nil {
		_ = l.Sync()
	}
}

// SetLogLevel 设置日志级别
func SetLogLevel(logLevel zapcore.Level) {
	atomicLevel.SetLevel(logLevel)
}

// GetLevel 获取当前日志级别
func GetLevel() zapcore.Level {
	return atomicLevel.Level()
}

// L 获取当前 logger
func L() *zap.Logger {
	if v := loggerValue.Load(); v != nil {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return zap.NewNop()
}

// Named 返回带名字的子 logger
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// getSugaredLogger 获取当前 sugared logger
func getSugaredLogger() *zap.SugaredLogger {
	if v := sugaredValue.Load(); v != nil {
		if sl, ok := v.(*zap.SugaredLogger); ok {
			return sl
		}
	}
	return nil
}

func caller() *zap.Logger {
	return L().WithOptions(zap.AddCallerSkip(1))
}

// Debug 输出 Debug 级别日志
func Debug(msg string, fields ...zap.Field) {
	caller().Debug(msg, fields...)
}

// Info 输出 Info 级别日志
func Info(msg string, fields ...zap.Field) {
	caller().Info(msg, fields...)
}

// Warn 输出 Warn 级别日志
func Warn(msg string, fields ...zap.Field) {
	caller().Warn(msg, fields...)
}

// Error 输出 Error 级别日志
func Error(msg string, fields ...zap.Field) {
	caller().Error(msg, fields...)
}

// Fatal 输出 Fatal 级别日志并退出程序
func Fatal(msg string, fields ...zap.Field) {
	caller().Fatal(msg, fields...)
}

// Debugf 使用格式化字符串输出 Debug 级别日志
func Debugf(template string, args ...interface{}) {
	if sl := getSugaredLogger(); sl != nil {
		sl.Debugf(template, args...)
	}
}

// Infof 使用格式化字符串输出 Info 级别日志
func Infof(template string, args ...interface{}) {
	if sl := getSugaredLogger(); sl != nil {
		sl.Infof(template, args...)
	}
}

// Warnf 使用格式化字符串输出 Warn 级别日志
func Warnf(template string, args ...interface{}) {
	if sl := getSugaredLogger(); sl != nil {
		sl.Warnf(template, args...)
	}
}

// Errorf 使用格式化字符串输出 Error 级别日志
func Errorf(template string, args ...interface{}) {
	if sl := getSugaredLogger(); sl != nil {
		sl.Errorf(template, args...)
	}
}
