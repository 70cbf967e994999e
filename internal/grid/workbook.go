package grid

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	// colsDefinedName 保存网格列数的工作簿名称，保证重新打开后哨兵列位置不变
	colsDefinedName = "ClanstatGridCols"
	commentAuthor   = "clanstat"
)

// Workbook 基于 xlsx 文件的网格，备注保存为批注，背景色保存为填充样式
type Workbook struct {
	file   *excelize.File
	path   string
	sheet  string
	cols   int
	styles map[Color]int
}

// OpenWorkbook 打开工作簿中第 index 个工作表（从 0 开始）；文件不存在时新建
func OpenWorkbook(path string, index int) (*Workbook, error) {
	var (
		f   *excelize.File
		err error
	)
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		f = excelize.NewFile()
	} else {
		f, err = excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open workbook %s: %w", path, err)
		}
	}

	sheets := f.GetSheetList()
	if index < 0 || index >= len(sheets) {
		_ = f.Close()
		return nil, fmt.Errorf("worksheet index %d out of range (%d sheets)", index, len(sheets))
	}

	wb := &Workbook{
		file:   f,
		path:   path,
		sheet:  sheets[index],
		styles: make(map[Color]int),
	}
	if err := wb.loadCols(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return wb, nil
}

// loadCols 读取保存的列数；名称在会话期间移除，避免增删行列时被改写
func (w *Workbook) loadCols() error {
	for _, dn := range w.file.GetDefinedName() {
		if dn.Name != colsDefinedName {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(dn.RefersTo), "="))
		if err == nil && n > 0 {
			w.cols = n
		}
		if err := w.file.DeleteDefinedName(&excelize.DefinedName{Name: colsDefinedName}); err != nil {
			return fmt.Errorf("remove defined name: %w", err)
		}
	}

	rows, err := w.file.GetRows(w.sheet)
	if err != nil {
		return fmt.Errorf("read rows: %w", err)
	}
	used := 0
	for _, row := range rows {
		for i := len(row); i > 0; i-- {
			if row[i-1] != "" {
				if i > used {
					used = i
				}
				break
			}
		}
	}
	if w.cols <= used {
		w.cols = used + 1
	}
	return nil
}

// Cols 当前列数
func (w *Workbook) Cols() int {
	return w.cols
}

func (w *Workbook) extend(col int) {
	if col >= w.cols {
		w.cols = col + 1
	}
}

func (w *Workbook) notes() (map[coord]string, error) {
	comments, err := w.file.GetComments(w.sheet)
	if err != nil {
		return nil, fmt.Errorf("read comments: %w", err)
	}
	out := make(map[coord]string, len(comments))
	for _, c := range comments {
		col, row, err := excelize.CellNameToCoordinates(c.Cell)
		if err != nil {
			continue
		}
		out[coord{row, col}] = commentText(c)
	}
	return out, nil
}

func commentText(c excelize.Comment) string {
	text := c.Text
	if len(c.Paragraph) > 0 {
		var sb strings.Builder
		for _, run := range c.Paragraph {
			sb.WriteString(run.Text)
		}
		text = sb.String()
	}
	if strings.HasPrefix(text, commentAuthor+":") {
		text = strings.TrimLeft(strings.TrimPrefix(text, commentAuthor+":"), " \n")
	}
	return text
}

func (w *Workbook) color(label string) (Color, error) {
	id, err := w.file.GetCellStyle(w.sheet, label)
	if err != nil {
		return ColorNone, err
	}
	if id == 0 {
		return ColorNone, nil
	}
	for c, sid := range w.styles {
		if sid == id {
			return c, nil
		}
	}
	style, err := w.file.GetStyle(id)
	if err != nil || style == nil {
		return ColorNone, nil
	}
	if style.Fill.Type == "pattern" && len(style.Fill.Color) > 0 {
		rgb := strings.ToUpper(strings.TrimPrefix(style.Fill.Color[0], "#"))
		if len(rgb) == 8 {
			// ARGB
			rgb = rgb[2:]
		}
		return Color(rgb), nil
	}
	return ColorNone, nil
}

// Cell 读取单元格
func (w *Workbook) Cell(row, col int) (Cell, error) {
	if err := checkCoord(row, col); err != nil {
		return Cell{}, err
	}
	notes, err := w.notes()
	if err != nil {
		return Cell{}, err
	}
	return w.cell(row, col, notes)
}

func (w *Workbook) cell(row, col int, notes map[coord]string) (Cell, error) {
	label := Label(row, col)
	value, err := w.file.GetCellValue(w.sheet, label)
	if err != nil {
		return Cell{}, fmt.Errorf("read %s: %w", label, err)
	}
	color, err := w.color(label)
	if err != nil {
		return Cell{}, fmt.Errorf("read style %s: %w", label, err)
	}
	return Cell{
		Row:   row,
		Col:   col,
		Value: value,
		Note:  notes[coord{row, col}],
		Color: color,
	}, nil
}

// SetValue 写入值，整数按数值写入
func (w *Workbook) SetValue(row, col int, value string) error {
	if err := checkCoord(row, col); err != nil {
		return err
	}
	w.extend(col)
	return w.setValue(Label(row, col), value)
}

func (w *Workbook) setValue(label, value string) error {
	if n, err := strconv.Atoi(value); err == nil && strconv.Itoa(n) == value {
		return w.file.SetCellValue(w.sheet, label, n)
	}
	return w.file.SetCellValue(w.sheet, label, value)
}

// SetNote 写入备注（批注）
func (w *Workbook) SetNote(row, col int, note string) error {
	if err := checkCoord(row, col); err != nil {
		return err
	}
	w.extend(col)
	notes, err := w.notes()
	if err != nil {
		return err
	}
	return w.setNote(row, col, note, notes)
}

func (w *Workbook) setNote(row, col int, note string, notes map[coord]string) error {
	label := Label(row, col)
	if _, ok := notes[coord{row, col}]; ok {
		if err := w.file.DeleteComment(w.sheet, label); err != nil {
			return fmt.Errorf("delete comment %s: %w", label, err)
		}
	}
	if note == "" {
		return nil
	}
	return w.file.AddComment(w.sheet, excelize.Comment{
		Author:    commentAuthor,
		Cell:      label,
		Paragraph: []excelize.RichTextRun{{Text: note}},
	})
}

func (w *Workbook) styleID(color Color) (int, error) {
	if color == ColorNone {
		return 0, nil
	}
	if id, ok := w.styles[color]; ok {
		return id, nil
	}
	id, err := w.file.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{string(color)}},
	})
	if err != nil {
		return 0, fmt.Errorf("new style %s: %w", color, err)
	}
	w.styles[color] = id
	return id, nil
}

// SetColor 设置背景色
func (w *Workbook) SetColor(row, col int, color Color) error {
	if err := checkCoord(row, col); err != nil {
		return err
	}
	w.extend(col)
	id, err := w.styleID(color)
	if err != nil {
		return err
	}
	label := Label(row, col)
	return w.file.SetCellStyle(w.sheet, label, label, id)
}

// Row 读取整行
func (w *Workbook) Row(row int) ([]Cell, error) {
	notes, err := w.notes()
	if err != nil {
		return nil, err
	}
	cells := make([]Cell, 0, w.cols)
	for col := 1; col <= w.cols; col++ {
		c, err := w.cell(row, col, notes)
		if err != nil {
			return nil, err
		}
		cells = append(cells, c)
	}
	return cells, nil
}

// Find 查找值相等的单元格
func (w *Workbook) Find(value string) ([]Cell, error) {
	rows, err := w.file.GetRows(w.sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	notes, err := w.notes()
	if err != nil {
		return nil, err
	}
	var found []Cell
	for r, row := range rows {
		for c, v := range row {
			if v != value {
				continue
			}
			cell, err := w.cell(r+1, c+1, notes)
			if err != nil {
				return nil, err
			}
			found = append(found, cell)
		}
	}
	return found, nil
}

// moveNotes 先删除受影响的批注，结构调整后再按 fn 给出的新位置写回
func (w *Workbook) moveNotes(affected func(k coord) bool, shift func(k coord) (coord, bool), op func() error) error {
	notes, err := w.notes()
	if err != nil {
		return err
	}
	moved := make(map[coord]string)
	for k, text := range notes {
		if !affected(k) {
			continue
		}
		if err := w.file.DeleteComment(w.sheet, Label(k.row, k.col)); err != nil {
			return fmt.Errorf("delete comment: %w", err)
		}
		if nk, keep := shift(k); keep {
			moved[nk] = text
		}
	}
	if err := op(); err != nil {
		return err
	}
	keys := make([]coord, 0, len(moved))
	for k := range moved {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].row != keys[j].row {
			return keys[i].row < keys[j].row
		}
		return keys[i].col < keys[j].col
	})
	for _, k := range keys {
		if err := w.setNote(k.row, k.col, moved[k], map[coord]string{}); err != nil {
			return err
		}
	}
	return nil
}

// InsertCols 在 after 列之后插入 n 列
func (w *Workbook) InsertCols(after, n int) error {
	if n <= 0 {
		return nil
	}
	err := w.moveNotes(
		func(k coord) bool { return k.col > after },
		func(k coord) (coord, bool) { return coord{k.row, k.col + n}, true },
		func() error { return w.file.InsertCols(w.sheet, ColumnName(after+1), n) },
	)
	if err != nil {
		return fmt.Errorf("insert cols: %w", err)
	}
	w.cols += n
	return nil
}

// InsertRows 在 after 行之后插入 n 行
func (w *Workbook) InsertRows(after, n int) error {
	if n <= 0 {
		return nil
	}
	err := w.moveNotes(
		func(k coord) bool { return k.row > after },
		func(k coord) (coord, bool) { return coord{k.row + n, k.col}, true },
		func() error { return w.file.InsertRows(w.sheet, after+1, n) },
	)
	if err != nil {
		return fmt.Errorf("insert rows: %w", err)
	}
	return nil
}

// DeleteRows 删除 row 开始的 n 行
func (w *Workbook) DeleteRows(row, n int) error {
	if n <= 0 {
		return nil
	}
	err := w.moveNotes(
		func(k coord) bool { return k.row >= row },
		func(k coord) (coord, bool) {
			if k.row < row+n {
				return k, false
			}
			return coord{k.row - n, k.col}, true
		},
		func() error {
			for i := 0; i < n; i++ {
				if err := w.file.RemoveRow(w.sheet, row); err != nil {
					return err
				}
			}
			return nil
		},
	)
	if err != nil {
		return fmt.Errorf("delete rows: %w", err)
	}
	return nil
}

type sortedRow struct {
	values []string
	styles []int
	notes  map[int]string
}

// SortRows 整行排序，值、样式与批注随行移动
func (w *Workbook) SortRows(top, bottom, keyCol int, desc bool) error {
	if bottom <= top {
		return nil
	}
	notes, err := w.notes()
	if err != nil {
		return err
	}
	rows := make([]sortedRow, 0, bottom-top+1)
	for r := top; r <= bottom; r++ {
		line := sortedRow{
			values: make([]string, w.cols),
			styles: make([]int, w.cols),
			notes:  make(map[int]string),
		}
		for c := 1; c <= w.cols; c++ {
			label := Label(r, c)
			if line.values[c-1], err = w.file.GetCellValue(w.sheet, label); err != nil {
				return fmt.Errorf("read %s: %w", label, err)
			}
			if line.styles[c-1], err = w.file.GetCellStyle(w.sheet, label); err != nil {
				return fmt.Errorf("read style %s: %w", label, err)
			}
			if text, ok := notes[coord{r, c}]; ok {
				line.notes[c] = text
				if err := w.file.DeleteComment(w.sheet, label); err != nil {
					return fmt.Errorf("delete comment %s: %w", label, err)
				}
			}
		}
		rows = append(rows, line)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return sortKeyLess(rows[i].values[keyCol-1], rows[j].values[keyCol-1], desc)
	})

	for i, line := range rows {
		r := top + i
		for c := 1; c <= w.cols; c++ {
			label := Label(r, c)
			if err := w.setValue(label, line.values[c-1]); err != nil {
				return fmt.Errorf("write %s: %w", label, err)
			}
			if err := w.file.SetCellStyle(w.sheet, label, label, line.styles[c-1]); err != nil {
				return fmt.Errorf("write style %s: %w", label, err)
			}
			if text, ok := line.notes[c]; ok {
				if err := w.setNote(r, c, text, map[coord]string{}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// SetColWidth 设置列宽，像素按默认字体换算为字符宽度
func (w *Workbook) SetColWidth(col, pixels int) error {
	name := ColumnName(col)
	width := float64(pixels-5) / 7
	if width < 1 {
		width = 1
	}
	return w.file.SetColWidth(w.sheet, name, name, width)
}

// FreezeCols 冻结左侧 n 列
func (w *Workbook) FreezeCols(n int) error {
	if n <= 0 {
		return w.file.SetPanes(w.sheet, &excelize.Panes{})
	}
	return w.file.SetPanes(w.sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      n,
		TopLeftCell: Label(1, n+1),
		ActivePane:  "topRight",
	})
}

// Save 保存工作簿，同时写入网格列数
func (w *Workbook) Save() error {
	dn := &excelize.DefinedName{Name: colsDefinedName, RefersTo: strconv.Itoa(w.cols)}
	if err := w.file.SetDefinedName(dn); err != nil {
		return fmt.Errorf("set defined name: %w", err)
	}
	saveErr := w.file.SaveAs(w.path)
	if err := w.file.DeleteDefinedName(&excelize.DefinedName{Name: colsDefinedName}); err != nil && saveErr == nil {
		return fmt.Errorf("remove defined name: %w", err)
	}
	if saveErr != nil {
		return fmt.Errorf("save workbook %s: %w", w.path, saveErr)
	}
	return nil
}

// Close 关闭工作簿
func (w *Workbook) Close() error {
	return w.file.Close()
}
