// Package grid 提供统计表的单元格读写抽象。
//
// 行列均从 1 开始编号。网格的最后一列始终保持空白（哨兵列），
// 新增列一律插入在哨兵列之前。
package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// Color 单元格背景色，RGB 十六进制（不含 #）
type Color string

// 统计表使用的背景色
const (
	ColorNone      Color = ""
	ColorGrey      Color = "BDBDBD"
	ColorRed       Color = "FF0000"
	ColorBlue      Color = "00FFFF"
	ColorOrange    Color = "F6B26B"
	ColorSkin      Color = "FFE599"
	ColorPink      Color = "F4CCCC"
	ColorDarkGreen Color = "93C47D"
	ColorDarkBlue  Color = "A4C2F4"
)

// Cell 单元格快照
type Cell struct {
	Row   int
	Col   int
	Value string
	Note  string
	Color Color
}

// Grid 统计表访问接口
type Grid interface {
	// Cols 当前网格列数（含哨兵列）
	Cols() int
	Cell(row, col int) (Cell, error)
	SetValue(row, col int, value string) error
	// SetNote 设置备注，空字符串表示删除备注
	SetNote(row, col int, note string) error
	SetColor(row, col int, color Color) error
	// Row 读取一整行（第 1 列到 Cols 列）
	Row(row int) ([]Cell, error)
	// Find 按行优先顺序查找值完全相等的单元格
	Find(value string) ([]Cell, error)
	// InsertCols 在第 after 列之后插入 n 个空白列，不继承格式
	InsertCols(after, n int) error
	// InsertRows 在第 after 行之后插入 n 个空白行
	InsertRows(after, n int) error
	// DeleteRows 从第 row 行开始删除 n 行，下方行上移
	DeleteRows(row, n int) error
	// SortRows 按 keyCol 列对 top..bottom 行整行排序（稳定排序，空值置后）
	SortRows(top, bottom, keyCol int, desc bool) error
	SetColWidth(col, pixels int) error
	FreezeCols(n int) error
	Save() error
}

// ColumnName 列序号转列字母（1 -> A）
func ColumnName(col int) string {
	name := ""
	for col > 0 {
		col--
		name = string(rune('A'+col%26)) + name
		col /= 26
	}
	return name
}

// Label 单元格地址标签，如 "B3"
func Label(row, col int) string {
	return ColumnName(col) + strconv.Itoa(row)
}

func checkCoord(row, col int) error {
	if row < 1 || col < 1 {
		return fmt.Errorf("invalid cell coordinate (%d, %d)", row, col)
	}
	return nil
}

// lessValue 排序比较：两侧都是数字时按数值比较，否则按字符串比较
func lessValue(a, b string, desc bool) bool {
	af, aerr := strconv.ParseFloat(strings.TrimSpace(a), 64)
	bf, berr := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if aerr == nil && berr == nil {
		if desc {
			return af > bf
		}
		return af < bf
	}
	if desc {
		return a > b
	}
	return a < b
}

// sortKeyLess 空值永远排在最后
func sortKeyLess(a, b string, desc bool) bool {
	switch {
	case a == "" && b == "":
		return false
	case a == "":
		return false
	case b == "":
		return true
	}
	return lessValue(a, b, desc)
}
