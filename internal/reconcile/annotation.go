package reconcile

import (
	"regexp"
	"strings"
)

// Genre 列记录类型
type Genre int

const (
	GenreUnknown Genre = iota
	GenreWar
	GenreDonate
)

func (g Genre) String() string {
	switch g {
	case GenreWar:
		return "war"
	case GenreDonate:
		return "donate"
	default:
		return "unknown"
	}
}

// 表头备注中的类型标签
const (
	LabelSettled = "結算日"
	LabelStarted = "發起日"
	LabelCounted = "統計日"
)

// MinDate 没有任何已记录列时使用的日期
const MinDate = "00000000"

var dateTokenRe = regexp.MustCompile(`^\d{8}$`)

// Annotation 表头备注 "<标签> <YYYYMMDD>"
type Annotation struct {
	Label string
	Date  string
}

// Genre 由标签推断记录类型
func (a Annotation) Genre() Genre {
	return genreOf(a.Label)
}

func (a Annotation) String() string {
	return a.Label + " " + a.Date
}

// WarAnnotation 战斗类列的备注
func WarAnnotation(date string) Annotation {
	return Annotation{Label: LabelSettled, Date: date}
}

// DonateAnnotation 捐赠统计列的备注
func DonateAnnotation(date string) Annotation {
	return Annotation{Label: LabelCounted, Date: date}
}

func genreOf(label string) Genre {
	switch label {
	case LabelSettled, LabelStarted:
		return GenreWar
	case LabelCounted:
		return GenreDonate
	default:
		return GenreUnknown
	}
}

// ParseAnnotation 解析表头备注；标签未知或日期不是 8 位数字时返回 false
func ParseAnnotation(note string) (Annotation, bool) {
	fields := strings.Fields(note)
	if len(fields) < 2 {
		return Annotation{}, false
	}
	if genreOf(fields[0]) == GenreUnknown {
		return Annotation{}, false
	}
	if !dateTokenRe.MatchString(fields[1]) {
		return Annotation{}, false
	}
	return Annotation{Label: fields[0], Date: fields[1]}, true
}
