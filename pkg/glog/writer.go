package glog

import (
	"gopkg.in/natefinch/lumberjack.v2"
)

// newWriter 按文件配置创建滚动写入器，未设置的字段取 DefaultConfig 中的值
func newWriter(filename string, fc FileConfig) *lumberjack.Logger {
	defaults := DefaultConfig().File
	if fc.MaxSize <= 0 {
		fc.MaxSize = defaults.MaxSize
	}
	if fc.MaxBackups <= 0 {
		fc.MaxBackups = defaults.MaxBackups
	}
	if fc.MaxAge <= 0 {
		fc.MaxAge = defaults.MaxAge
	}
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    fc.MaxSize,
		MaxBackups: fc.MaxBackups,
		MaxAge:     fc.MaxAge,
		LocalTime:  fc.LocalTime,
		Compress:   fc.Compress,
	}
}
