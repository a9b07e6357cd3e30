package buffer

import (
	"io"
	"log/slog"
)

const (
	// DefaultHighWater 常驻页数达到该值时触发淘汰
	DefaultHighWater = 128
	// DefaultLowWater 一轮淘汰结束时的常驻页数
	DefaultLowWater = 96
)

type options struct {
	highWater int
	lowWater  int
	logger    *slog.Logger
}

// Option 配置 NewPagedStore
type Option func(*options)

// WithWatermarks 设置高低水位线，要求 0 <= low < high
func WithWatermarks(high, low int) Option {
	return func(o *options) {
		o.highWater = high
		o.lowWater = low
	}
}

// WithLogger 设置日志输出；nil 表示丢弃
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func defaultOptions() options {
	return options{
		highWater: DefaultHighWater,
		lowWater:  DefaultLowWater,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
