package filler

import (
	"sort"
	"strconv"
	"strings"
)

// 标记备注
const (
	NoteNoBattle       = "未出戰"
	NoteFewCollection  = "集卡日不足 3 場"
	NoteNotParticipate = "未參加"
	rankingNotePrefix  = "ranking: "
)

// TopRanked 标记名次的人数
const TopRanked = 5

// minCollectionBattles 集卡日最少出战场数
const minCollectionBattles = 3

// WarStats 部落战（旧版）个人战绩
type WarStats struct {
	CardsEarned                int
	BattlesPlayed              int
	Wins                       int
	CollectionDayBattlesPlayed int
}

// FormatWar "<卡片数>" + "L"×败场 + "w"×胜场，未出战追加 "x"；返回值与标记备注
func FormatWar(s WarStats) (value, flag string) {
	losses := s.BattlesPlayed - s.Wins
	if losses < 0 {
		losses = 0
	}
	wins := s.Wins
	if wins < 0 {
		wins = 0
	}

	var sb strings.Builder
	sb.WriteString(strconv.Itoa(s.CardsEarned))
	sb.WriteString(strings.Repeat("L", losses))
	sb.WriteString(strings.Repeat("w", wins))

	switch {
	case s.BattlesPlayed == 0:
		sb.WriteString("x")
		flag = NoteNoBattle
	case s.CollectionDayBattlesPlayed < minCollectionBattles:
		flag = NoteFewCollection
	}
	return sb.String(), flag
}

// Secondary 河流竞赛括号内显示的数值
type Secondary int

const (
	SecondaryRepairPoints Secondary = iota
	SecondaryDecksUsed
)

// ParseSecondary 解析配置值，未知值按 repairPoints 处理
func ParseSecondary(s string) Secondary {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "decksused", "decks_used", "decks":
		return SecondaryDecksUsed
	default:
		return SecondaryRepairPoints
	}
}

// FameStats 河流竞赛个人贡献
type FameStats struct {
	Fame         int
	RepairPoints int
	DecksUsed    int
}

// FormatFame "<名誉> (<维修点或出战次数>)"；名誉与维修点合计为 0 时记 "0" 并标记未参加
func FormatFame(s FameStats, sec Secondary) (value, flag string) {
	if s.Fame+s.RepairPoints == 0 {
		return "0", NoteNotParticipate
	}
	second := s.RepairPoints
	if sec == SecondaryDecksUsed {
		second = s.DecksUsed
	}
	return strconv.Itoa(s.Fame) + " (" + strconv.Itoa(second) + ")", ""
}

// FormatDonation 捐赠数
func FormatDonation(donations int) string {
	return strconv.Itoa(donations)
}

// RankingNote 名次备注
func RankingNote(rank int) string {
	return rankingNotePrefix + strconv.Itoa(rank)
}

// FameEntry 河流竞赛参与者
type FameEntry struct {
	Tag  string
	Name string
	FameStats
}

// RaceRecords 按名誉从高到低（稳定）排序后格式化，前 TopRanked 名标记名次
func RaceRecords(entries []FameEntry, sec Secondary) []Record {
	sorted := make([]FameEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Fame > sorted[j].Fame
	})

	records := make([]Record, 0, len(sorted))
	for i, e := range sorted {
		value, flag := FormatFame(e.FameStats, sec)
		rec := Record{Tag: e.Tag, Name: e.Name, Value: value, Flag: flag}
		if i < TopRanked {
			rec.Rank = i + 1
		}
		records = append(records, rec)
	}
	return records
}

// WarEntry 部落战（旧版）参与者
type WarEntry struct {
	Tag  string
	Name string
	WarStats
}

// WarRecords 格式化部落战战绩
func WarRecords(entries []WarEntry) []Record {
	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		value, flag := FormatWar(e.WarStats)
		records = append(records, Record{Tag: e.Tag, Name: e.Name, Value: value, Flag: flag})
	}
	return records
}
