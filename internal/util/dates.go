package util

import "time"

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// DateOf 取时间戳所在日历日的 YYYY-MM-DD 表示
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate 解析 YYYY-MM-DD，失败返回 ErrInvalidDate
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// ParseClock 校验 HH:MM 并返回当日该时刻
func ParseClock(date time.Time, s string) (time.Time, error) {
	c, err := time.Parse(ClockLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidClock
	}
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour(), c.Minute(), 0, 0, date.Location()), nil
}

// FormatClock 输出 HH:MM
func FormatClock(t time.Time) string {
	return t.Format(ClockLayout)
}

// DaysBetween 两个时间戳之间的整日数（按日历日差）
func DaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location())
	return int(t.Sub(f).Hours() / 24)
}

// IsWeekend 判断是否周末
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
