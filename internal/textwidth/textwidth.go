// Package textwidth 按终端显示宽度对齐文本，全角字符占两格。
package textwidth

import (
	"runtime"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

var cond = newCondition()

func newCondition() *runewidth.Condition {
	c := runewidth.NewCondition()
	// 歧义宽度字符只在 Windows 终端按全角显示
	c.EastAsianWidth = runtime.GOOS == "windows"
	return c
}

// Width 显示宽度，忽略 ANSI 控制序列
func Width(s string) int {
	if s == "" {
		return 0
	}
	return cond.StringWidth(ansi.Strip(s))
}

func padding(s string, length int) int {
	diff := length - Width(s)
	if diff < 0 {
		// 超长时至少留一个空格分隔
		diff = 1
	}
	return diff
}

// Left 左对齐到 length 宽度；空字符串原样返回
func Left(s string, length int) string {
	if s == "" {
		return ""
	}
	return s + strings.Repeat(" ", padding(s, length))
}

// Right 右对齐到 length 宽度；空字符串原样返回
func Right(s string, length int) string {
	if s == "" {
		return ""
	}
	return strings.Repeat(" ", padding(s, length)) + s
}
