package sheet

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"clanstat/internal/crapi"
	"clanstat/internal/grid"
	"clanstat/internal/roster"
	"clanstat/internal/textwidth"
)

// MemberChanges 名单变动
type MemberChanges struct {
	Added   []string
	Removed []string
}

// TrophyChanges 最高奖杯变动
type TrophyChanges struct {
	Updated []string
}

type roleCell struct {
	digit string
	color grid.Color
}

var roleCells = map[string]roleCell{
	crapi.RoleLeader:   {"3", grid.ColorOrange},
	crapi.RoleCoLeader: {"2", grid.ColorDarkBlue},
	crapi.RoleElder:    {"1", grid.ColorDarkGreen},
	crapi.RoleMember:   {"0", grid.ColorNone},
}

func roleOf(role string) roleCell {
	if rc, ok := roleCells[role]; ok {
		return rc
	}
	return roleCell{"0", grid.ColorNone}
}

type leaver struct {
	name string
	tag  string
	row  int
}

// UpdateMembers 移除已离开的成员，加入新成员；有新成员时按最高奖杯排序
func (s *Service) UpdateMembers(ctx context.Context) (MemberChanges, error) {
	var changes MemberChanges

	r, err := s.readRoster()
	if err != nil {
		return changes, err
	}
	members, byTag, err := s.members(ctx)
	if err != nil {
		return changes, err
	}

	g := s.grid
	nameCol := r.TagCol - 1
	inSheet := make(map[string]bool, r.Len())
	var leavers []leaver
	for _, row := range r.Rows() {
		if _, ok := byTag[row.Tag]; ok {
			inSheet[row.Tag] = true
			continue
		}
		name := ""
		if nameCol >= 1 {
			c, err := g.Cell(row.Row, nameCol)
			if err != nil {
				return changes, err
			}
			name = c.Value
		}
		leavers = append(leavers, leaver{name: name, tag: row.Tag, row: row.Row})
	}

	// 从下往上删除，名单末尾补一个空行，保持名单下方的内容不动
	lastRow := r.LastRow()
	for i := len(leavers) - 1; i >= 0; i-- {
		l := leavers[i]
		if err := g.InsertRows(lastRow, 1); err != nil {
			return changes, fmt.Errorf("insert row: %w", err)
		}
		if err := g.DeleteRows(l.row, 1); err != nil {
			return changes, fmt.Errorf("delete row %d: %w", l.row, err)
		}
		changes.Removed = append(changes.Removed, l.tag)
		s.printf("成員 %s已移除\n", textwidth.Left(l.name, 32))
		s.log(ctx).Info("member removed", zap.String("tag", l.tag), zap.String("name", l.name))
	}

	next := r.NextRow() - len(leavers)
	lastInserted := 0
	for _, m := range members {
		if inSheet[m.Tag] {
			continue
		}
		if err := s.writeMember(next, r.TagCol, m); err != nil {
			return changes, err
		}
		changes.Added = append(changes.Added, m.Tag)
		s.printf("成員 %s已加入\n", textwidth.Left(m.Name, 32))
		s.log(ctx).Info("member added", zap.String("tag", m.Tag), zap.String("name", m.Name))
		lastInserted = next
		next++
	}

	if lastInserted > 0 {
		if err := s.sortByTrophies(lastInserted); err != nil {
			return changes, err
		}
	}
	return changes, s.save()
}

// writeMember 依次写入 帳號 / 標籤 / 最高盃數 / 職位
func (s *Service) writeMember(row, tagCol int, m crapi.Member) error {
	g := s.grid
	values := []struct {
		col   int
		value string
	}{
		{tagCol - 1, m.Name},
		{tagCol, m.Tag},
		{tagCol + 1, strconv.Itoa(m.BestTrophies)},
	}
	for _, v := range values {
		if v.col < 1 {
			continue
		}
		if err := g.SetValue(row, v.col, v.value); err != nil {
			return fmt.Errorf("write member %s: %w", m.Tag, err)
		}
	}
	rc := roleOf(m.Role)
	if err := g.SetValue(row, tagCol+2, rc.digit); err != nil {
		return fmt.Errorf("write member %s: %w", m.Tag, err)
	}
	return g.SetColor(row, tagCol+2, rc.color)
}

func (s *Service) trophyCol(r *roster.Roster) (int, error) {
	found, err := s.grid.Find(HeaderBestTrophies)
	if err != nil {
		return 0, err
	}
	if len(found) == 0 {
		return r.TagCol + 1, nil
	}
	return found[0].Col, nil
}

// sortByTrophies 第 2 行至 bottom 行按最高奖杯降序排列
func (s *Service) sortByTrophies(bottom int) error {
	s.printf("依最高盃數排序...\n")
	found, err := s.grid.Find(HeaderBestTrophies)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return fmt.Errorf("找不到「%s」表頭", HeaderBestTrophies)
	}
	header := found[0]
	if err := s.grid.SortRows(header.Row+1, bottom, header.Col, true); err != nil {
		return fmt.Errorf("sort by trophies: %w", err)
	}
	s.printf("排序完成\n")
	return nil
}

// UpdateTrophies 只在 API 的最高奖杯更高时更新
func (s *Service) UpdateTrophies(ctx context.Context) (TrophyChanges, error) {
	var changes TrophyChanges

	r, err := s.readRoster()
	if err != nil {
		return changes, err
	}
	_, byTag, err := s.members(ctx)
	if err != nil {
		return changes, err
	}
	col, err := s.trophyCol(r)
	if err != nil {
		return changes, err
	}

	s.printf("更新最高盃數...\n")
	for _, row := range r.Rows() {
		m, ok := byTag[row.Tag]
		if !ok {
			s.printf("警告：標籤 %s 不在部落中\n", row.Tag)
			s.log(ctx).Warn("member left clan", zap.String("tag", row.Tag))
			continue
		}
		c, err := s.grid.Cell(row.Row, col)
		if err != nil {
			return changes, err
		}
		current, _ := strconv.Atoi(strings.TrimSpace(c.Value))
		if current >= m.BestTrophies {
			continue
		}
		s.printf("成員 %s最高盃數: %d -> %d\n", textwidth.Left(m.Name, 32), current, m.BestTrophies)
		if err := s.grid.SetValue(row.Row, col, strconv.Itoa(m.BestTrophies)); err != nil {
			return changes, err
		}
		changes.Updated = append(changes.Updated, row.Tag)
	}

	if len(changes.Updated) == 0 {
		s.printf("最高盃數已是最新\n")
		return changes, nil
	}
	if err := s.sortByTrophies(r.LastRow()); err != nil {
		return changes, err
	}
	s.printf("最高盃數已更新\n")
	return changes, s.save()
}
