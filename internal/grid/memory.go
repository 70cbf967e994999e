package grid

import (
	"sort"
)

type coord struct {
	row, col int
}

// Memory 内存网格，供试运行与测试使用
type Memory struct {
	cells  map[coord]Cell
	cols   int
	widths map[int]int
	frozen int
}

// NewMemory 创建 cols 列的空白内存网格（cols 至少为 1，最后一列为哨兵列）
func NewMemory(cols int) *Memory {
	if cols < 1 {
		cols = 1
	}
	return &Memory{
		cells:  make(map[coord]Cell),
		cols:   cols,
		widths: make(map[int]int),
	}
}

// Cols 当前列数
func (m *Memory) Cols() int {
	return m.cols
}

// Rows 已使用的最大行号
func (m *Memory) Rows() int {
	maxRow := 0
	for k := range m.cells {
		if k.row > maxRow {
			maxRow = k.row
		}
	}
	return maxRow
}

// Cell 读取单元格
func (m *Memory) Cell(row, col int) (Cell, error) {
	if err := checkCoord(row, col); err != nil {
		return Cell{}, err
	}
	c, ok := m.cells[coord{row, col}]
	if !ok {
		return Cell{Row: row, Col: col}, nil
	}
	return c, nil
}

func (m *Memory) update(row, col int, fn func(c *Cell)) error {
	if err := checkCoord(row, col); err != nil {
		return err
	}
	// 写入哨兵列或更右侧时扩展网格，保证最后一列仍为空白
	if col >= m.cols {
		m.cols = col + 1
	}
	c, ok := m.cells[coord{row, col}]
	if !ok {
		c = Cell{Row: row, Col: col}
	}
	fn(&c)
	if c.Value == "" && c.Note == "" && c.Color == ColorNone {
		delete(m.cells, coord{row, col})
		return nil
	}
	m.cells[coord{row, col}] = c
	return nil
}

// SetValue 写入值
func (m *Memory) SetValue(row, col int, value string) error {
	return m.update(row, col, func(c *Cell) { c.Value = value })
}

// SetNote 写入备注
func (m *Memory) SetNote(row, col int, note string) error {
	return m.update(row, col, func(c *Cell) { c.Note = note })
}

// SetColor 设置背景色
func (m *Memory) SetColor(row, col int, color Color) error {
	return m.update(row, col, func(c *Cell) { c.Color = color })
}

// Row 读取整行
func (m *Memory) Row(row int) ([]Cell, error) {
	cells := make([]Cell, 0, m.cols)
	for col := 1; col <= m.cols; col++ {
		c, err := m.Cell(row, col)
		if err != nil {
			return nil, err
		}
		cells = append(cells, c)
	}
	return cells, nil
}

// Find 查找值相等的单元格
func (m *Memory) Find(value string) ([]Cell, error) {
	var found []Cell
	for _, c := range m.cells {
		if c.Value == value {
			found = append(found, c)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].Row != found[j].Row {
			return found[i].Row < found[j].Row
		}
		return found[i].Col < found[j].Col
	})
	return found, nil
}

func (m *Memory) remap(fn func(k coord) (coord, bool)) {
	next := make(map[coord]Cell, len(m.cells))
	for k, c := range m.cells {
		nk, keep := fn(k)
		if !keep {
			continue
		}
		c.Row, c.Col = nk.row, nk.col
		next[nk] = c
	}
	m.cells = next
}

// InsertCols 在 after 列之后插入 n 列
func (m *Memory) InsertCols(after, n int) error {
	if n <= 0 {
		return nil
	}
	m.remap(func(k coord) (coord, bool) {
		if k.col > after {
			k.col += n
		}
		return k, true
	})
	widths := make(map[int]int, len(m.widths))
	for col, w := range m.widths {
		if col > after {
			col += n
		}
		widths[col] = w
	}
	m.widths = widths
	m.cols += n
	return nil
}

// InsertRows 在 after 行之后插入 n 行
func (m *Memory) InsertRows(after, n int) error {
	if n <= 0 {
		return nil
	}
	m.remap(func(k coord) (coord, bool) {
		if k.row > after {
			k.row += n
		}
		return k, true
	})
	return nil
}

// DeleteRows 删除 row 开始的 n 行
func (m *Memory) DeleteRows(row, n int) error {
	if n <= 0 {
		return nil
	}
	m.remap(func(k coord) (coord, bool) {
		switch {
		case k.row >= row && k.row < row+n:
			return k, false
		case k.row >= row+n:
			k.row -= n
		}
		return k, true
	})
	return nil
}

// SortRows 整行排序
func (m *Memory) SortRows(top, bottom, keyCol int, desc bool) error {
	if bottom <= top {
		return nil
	}
	rows := make([]map[int]Cell, 0, bottom-top+1)
	for r := top; r <= bottom; r++ {
		line := make(map[int]Cell)
		for k, c := range m.cells {
			if k.row == r {
				line[k.col] = c
			}
		}
		rows = append(rows, line)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return sortKeyLess(rows[i][keyCol].Value, rows[j][keyCol].Value, desc)
	})
	for k := range m.cells {
		if k.row >= top && k.row <= bottom {
			delete(m.cells, k)
		}
	}
	for i, line := range rows {
		r := top + i
		for col, c := range line {
			c.Row = r
			m.cells[coord{r, col}] = c
		}
	}
	return nil
}

// SetColWidth 设置列宽（像素）
func (m *Memory) SetColWidth(col, pixels int) error {
	m.widths[col] = pixels
	return nil
}

// ColWidth 读取列宽，未设置时返回 0
func (m *Memory) ColWidth(col int) int {
	return m.widths[col]
}

// FreezeCols 冻结左侧 n 列
func (m *Memory) FreezeCols(n int) error {
	m.frozen = n
	return nil
}

// FrozenCols 已冻结列数
func (m *Memory) FrozenCols() int {
	return m.frozen
}

// Save 内存网格无需持久化
func (m *Memory) Save() error {
	return nil
}
