// Package timeutil 处理游戏 API 的时间格式与表格使用的日期标记。
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CompactLayout API 使用的紧凑 ISO 8601 格式
const CompactLayout = "20060102T150405.000Z"

// DateLayout 表头备注中的日期格式
const DateLayout = "20060102"

// Parse 解析 API 时间（UTC）
func Parse(s string) (time.Time, error) {
	t, err := time.ParseInLocation(CompactLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse api time %q: %w", s, err)
	}
	return t, nil
}

// DateToken 转换到 loc 后的 YYYYMMDD；loc 为 nil 时使用本地时区
func DateToken(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}

// LocalDateToken 解析 API 时间并返回所在时区的日期标记
func LocalDateToken(s string, loc *time.Location) (string, error) {
	t, err := Parse(s)
	if err != nil {
		return "", err
	}
	return DateToken(t, loc), nil
}

// ParseMonthDay 解析 "MM/DD"，年份与时区取自 now
func ParseMonthDay(s string, now time.Time) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("日期格式應為 MM/DD: %q", s)
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("無效月份: %q", s)
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("無效日期: %q", s)
	}
	t := time.Date(now.Year(), time.Month(month), day, 0, 0, 0, 0, now.Location())
	if t.Day() != day {
		return time.Time{}, fmt.Errorf("無效日期: %q", s)
	}
	return t, nil
}

// MonthDay MM/DD
func MonthDay(t time.Time) string {
	return t.Format("01/02")
}

// Rounded 取最大单位的粗略时长，如 "3 天"
func Rounded(d time.Duration) string {
	const (
		day  = 24 * time.Hour
		week = 7 * day
	)
	switch {
	case d > week:
		return strconv.Itoa(int(d/day)/7) + " 週"
	case d > day:
		return strconv.Itoa(int(d/day)) + " 天"
	case d > time.Hour:
		return strconv.Itoa(int(d/time.Hour)) + " 時"
	case d > time.Minute:
		return strconv.Itoa(int(d/time.Minute)) + " 分"
	default:
		if d < 0 {
			d = 0
		}
		return strconv.Itoa(int(d/time.Second)) + " 秒"
	}
}
