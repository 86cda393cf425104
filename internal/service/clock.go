package service

import "time"

// Clock 为引擎各组件提供统一的当前时间来源，便于测试中固定时钟
type Clock interface {
	Now() time.Time
}

// SystemClock 使用本机墙钟
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock 固定时钟，测试用
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time {
	return c.T
}
