// Package filler 把一个周期的成员数据写入目标列。
package filler

import (
	"fmt"

	"clanstat/internal/grid"
	"clanstat/internal/reconcile"
	"clanstat/internal/roster"
)

// Record 一名成员在目标列中的一格
type Record struct {
	Tag   string
	Name  string
	Value string
	// Flag 非空时标红并写入备注
	Flag string
	// Rank 大于 0 时标蓝并写入名次备注，覆盖 Flag
	Rank int
}

// Period 一个待写入的周期
type Period struct {
	Title      string
	Annotation reconcile.Annotation
	Color      grid.Color
	Records    []Record
}

// Warning 名单中找不到的成员
type Warning struct {
	Tag  string
	Name string
}

// FillReport 写入结果
type FillReport struct {
	Column   int
	Written  []string
	Warnings []Warning
}

// ProgressEvent 写入进度
type ProgressEvent struct {
	Done  int
	Total int
	Tag   string
}

func reportProgress(progress func(ProgressEvent), done, total int, tag string) {
	if progress == nil {
		return
	}
	progress(ProgressEvent{Done: done, Total: total, Tag: tag})
}

// Fill 写入表头与每名成员的数据。名单中不存在的成员只记录警告，不会新增行。
func Fill(g grid.Grid, col int, r *roster.Roster, p Period, progress func(ProgressEvent)) (FillReport, error) {
	report := FillReport{Column: col}

	if err := writeHeader(g, r.HeaderRow, col, p); err != nil {
		return report, err
	}

	total := len(p.Records)
	for i, rec := range p.Records {
		row, ok := r.Lookup(rec.Tag)
		if !ok {
			report.Warnings = append(report.Warnings, Warning{Tag: rec.Tag, Name: rec.Name})
			reportProgress(progress, i+1, total, rec.Tag)
			continue
		}
		if err := writeRecord(g, row.Row, col, rec); err != nil {
			return report, fmt.Errorf("write %s: %w", rec.Tag, err)
		}
		report.Written = append(report.Written, rec.Tag)
		reportProgress(progress, i+1, total, rec.Tag)
	}
	return report, nil
}

func writeHeader(g grid.Grid, row, col int, p Period) error {
	if err := g.SetValue(row, col, p.Title); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := g.SetNote(row, col, p.Annotation.String()); err != nil {
		return fmt.Errorf("write header note: %w", err)
	}
	if err := g.SetColor(row, col, p.Color); err != nil {
		return fmt.Errorf("write header color: %w", err)
	}
	return nil
}

func writeRecord(g grid.Grid, row, col int, rec Record) error {
	if err := g.SetValue(row, col, rec.Value); err != nil {
		return err
	}
	switch {
	case rec.Rank > 0:
		if err := g.SetColor(row, col, grid.ColorBlue); err != nil {
			return err
		}
		return g.SetNote(row, col, RankingNote(rec.Rank))
	case rec.Flag != "":
		if err := g.SetColor(row, col, grid.ColorRed); err != nil {
			return err
		}
		return g.SetNote(row, col, rec.Flag)
	}
	return nil
}
