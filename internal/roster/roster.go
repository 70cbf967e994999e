// Package roster 读取统计表中的成员标签列。
package roster

import (
	"errors"
	"fmt"

	"clanstat/internal/grid"
)

// TagHeader 标签列表头
const TagHeader = "標籤"

// ErrNoTagHeader 统计表中找不到标签列表头
var ErrNoTagHeader = errors.New("roster: tag header not found")

// Row 一个成员所在的行
type Row struct {
	Tag string
	Row int
}

// Roster 按表格顺序排列的成员行
type Roster struct {
	HeaderRow int
	TagCol    int
	rows      []Row
}

// Read 从“標籤”表头向下扫描，遇到空白单元格为止
func Read(g grid.Grid) (*Roster, error) {
	found, err := g.Find(TagHeader)
	if err != nil {
		return nil, fmt.Errorf("find tag header: %w", err)
	}
	if len(found) == 0 {
		return nil, ErrNoTagHeader
	}
	header := found[0]

	r := &Roster{HeaderRow: header.Row, TagCol: header.Col}
	for row := header.Row + 1; ; row++ {
		c, err := g.Cell(row, header.Col)
		if err != nil {
			return nil, fmt.Errorf("read tag cell: %w", err)
		}
		if c.Value == "" {
			break
		}
		r.rows = append(r.rows, Row{Tag: c.Value, Row: row})
	}
	return r, nil
}

// Rows 成员行（副本）
func (r *Roster) Rows() []Row {
	out := make([]Row, len(r.rows))
	copy(out, r.rows)
	return out
}

// Tags 所有标签
func (r *Roster) Tags() []string {
	tags := make([]string, 0, len(r.rows))
	for _, row := range r.rows {
		tags = append(tags, row.Tag)
	}
	return tags
}

// Len 成员行数
func (r *Roster) Len() int {
	return len(r.rows)
}

// Lookup 按标签精确查找
func (r *Roster) Lookup(tag string) (Row, bool) {
	for _, row := range r.rows {
		if row.Tag == tag {
			return row, true
		}
	}
	return Row{}, false
}

// NextRow 名单之后第一个空行
func (r *Roster) NextRow() int {
	if len(r.rows) == 0 {
		return r.HeaderRow + 1
	}
	return r.rows[len(r.rows)-1].Row + 1
}

// LastRow 名单最后一行；名单为空时返回表头行
func (r *Roster) LastRow() int {
	return r.NextRow() - 1
}
