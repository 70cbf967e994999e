// Package reconcile 决定每次周期更新写入哪一列：复用最近的同日捐赠列，或在哨兵列前新增一列。
//
// 列位置以“距最后一列的偏移”表示：offset = Cols - col。
package reconcile

import (
	"fmt"

	"clanstat/internal/grid"
)

// Latest 最近一次已记录列
type Latest struct {
	Genre  Genre
	Date   string
	Offset int
	// Found 是否找到可解析的表头备注
	Found bool
}

// Decision 列决策结果
type Decision struct {
	Reuse  bool
	Offset int
}

// ScanLatest 从右向左扫描表头备注（跳过哨兵列），取第一个可解析的备注。
// 都无法解析时以最后一个固定列为锚点，日期为 MinDate。
func ScanLatest(headers []grid.Cell, cols, fixedCols int) Latest {
	for i := len(headers) - 1; i >= 0; i-- {
		h := headers[i]
		if h.Col >= cols {
			continue
		}
		ann, ok := ParseAnnotation(h.Note)
		if !ok {
			continue
		}
		return Latest{
			Genre:  ann.Genre(),
			Date:   ann.Date,
			Offset: cols - h.Col,
			Found:  true,
		}
	}
	return Latest{
		Genre:  GenreUnknown,
		Date:   MinDate,
		Offset: cols - fixedCols,
	}
}

// Resolve 决定本次写入复用已有列还是新增列。
// 只有捐赠统计在同一天、且最近一列也是捐赠统计时复用。
func Resolve(latest Latest, date string, genre Genre) Decision {
	if genre == GenreDonate && latest.Genre == GenreDonate && latest.Date == date {
		return Decision{Reuse: true, Offset: latest.Offset}
	}
	return Decision{Offset: latest.Offset}
}

// ResolveTargetColumn 扫描表头并给出决策
func ResolveTargetColumn(headers []grid.Cell, cols, fixedCols int, date string, genre Genre) Decision {
	return Resolve(ScanLatest(headers, cols, fixedCols), date, genre)
}

// UnrecordedCount 计算尚未记录的周期数。dates 按新到旧排列。
// 日期晚于最近记录，或与最近的捐赠列同日，视为未记录；遇到第一个已记录周期即停止。
// 与最近战斗列同日的周期视为已记录。
func UnrecordedCount(latest Latest, dates []string) int {
	n := 0
	for _, date := range dates {
		switch {
		case date > latest.Date:
		case date == latest.Date && latest.Genre == GenreDonate:
		default:
			return n
		}
		n++
	}
	return n
}

// Allocator 依次分配新列，必要时在哨兵列前插入空白列
type Allocator struct {
	Offset int
	// Inserted 本分配器插入的列数
	Inserted int
}

// NewAllocator 以 offset 为最近记录列创建分配器
func NewAllocator(offset int) *Allocator {
	return &Allocator{Offset: offset}
}

// Next 返回下一个新列的列号
func (a *Allocator) Next(g grid.Grid) (int, error) {
	// 保持最后一列为空
	if a.Offset <= 1 {
		if err := g.InsertCols(g.Cols()-1, 1); err != nil {
			return 0, fmt.Errorf("insert column before sentinel: %w", err)
		}
		a.Offset++
		a.Inserted++
	}
	col := g.Cols() - (a.Offset - 1)
	a.Offset--
	return col, nil
}

// Column 按决策取得目标列：复用时直接换算，否则分配新列
func Column(g grid.Grid, d Decision) (col int, inserted bool, err error) {
	if d.Reuse {
		return g.Cols() - d.Offset, false, nil
	}
	a := NewAllocator(d.Offset)
	col, err = a.Next(g)
	return col, a.Inserted > 0, err
}

// Headers 读取表头行
func Headers(g grid.Grid, headerRow int) ([]grid.Cell, error) {
	row, err := g.Row(headerRow)
	if err != nil {
		return nil, fmt.Errorf("read header row: %w", err)
	}
	return row, nil
}
