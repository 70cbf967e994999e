package crapi

// 成员职位
const (
	RoleLeader   = "leader"
	RoleCoLeader = "coLeader"
	RoleElder    = "elder"
	RoleMember   = "member"
)

// Member 部落成员
type Member struct {
	Tag               string `json:"tag"`
	Name              string `json:"name"`
	Role              string `json:"role"`
	LastSeen          string `json:"lastSeen"`
	ExpLevel          int    `json:"expLevel"`
	Trophies          int    `json:"trophies"`
	ClanRank          int    `json:"clanRank"`
	PreviousClanRank  int    `json:"previousClanRank"`
	Donations         int    `json:"donations"`
	DonationsReceived int    `json:"donationsReceived"`
	// BestTrophies 来自 /players/{tag}
	BestTrophies int `json:"bestTrophies"`
}

// Player 玩家资料（只取用到的字段）
type Player struct {
	Tag          string `json:"tag"`
	Name         string `json:"name"`
	Trophies     int    `json:"trophies"`
	BestTrophies int    `json:"bestTrophies"`
}

type memberList struct {
	Items []Member `json:"items"`
}

// War 旧版部落战记录
type War struct {
	SeasonID     int              `json:"seasonId"`
	CreatedDate  string           `json:"createdDate"`
	Participants []WarParticipant `json:"participants"`
	Standings    []WarStanding    `json:"standings"`
}

// WarParticipant 部落战参与者
type WarParticipant struct {
	Tag                        string `json:"tag"`
	Name                       string `json:"name"`
	CardsEarned                int    `json:"cardsEarned"`
	BattlesPlayed              int    `json:"battlesPlayed"`
	Wins                       int    `json:"wins"`
	CollectionDayBattlesPlayed int    `json:"collectionDayBattlesPlayed"`
	NumberOfBattles            int    `json:"numberOfBattles"`
}

// WarStanding 部落战排名
type WarStanding struct {
	Clan         WarClan `json:"clan"`
	TrophyChange int     `json:"trophyChange"`
}

// WarClan 部落战中的部落
type WarClan struct {
	Tag           string `json:"tag"`
	Name          string `json:"name"`
	Participants  int    `json:"participants"`
	BattlesPlayed int    `json:"battlesPlayed"`
	Wins          int    `json:"wins"`
	Crowns        int    `json:"crowns"`
	ClanScore     int    `json:"clanScore"`
}

type warlog struct {
	Items []War `json:"items"`
}

// Standing 指定部落的排名
func (w War) Standing(clanTag string) (WarStanding, bool) {
	for _, s := range w.Standings {
		if s.Clan.Tag == clanTag {
			return s, true
		}
	}
	return WarStanding{}, false
}

// RiverRace 河流竞赛记录
type RiverRace struct {
	SeasonID     int            `json:"seasonId"`
	SectionIndex int            `json:"sectionIndex"`
	CreatedDate  string         `json:"createdDate"`
	Standings    []RaceStanding `json:"standings"`
}

// Week 第几周，从 1 开始
func (r RiverRace) Week() int {
	return r.SectionIndex + 1
}

// Standing 指定部落的排名
func (r RiverRace) Standing(clanTag string) (RaceStanding, bool) {
	for _, s := range r.Standings {
		if s.Clan.Tag == clanTag {
			return s, true
		}
	}
	return RaceStanding{}, false
}

// RaceStanding 河流竞赛排名
type RaceStanding struct {
	Rank         int      `json:"rank"`
	TrophyChange int      `json:"trophyChange"`
	Clan         RaceClan `json:"clan"`
}

// RaceClan 河流竞赛中的部落
type RaceClan struct {
	Tag          string            `json:"tag"`
	Name         string            `json:"name"`
	Fame         int               `json:"fame"`
	RepairPoints int               `json:"repairPoints"`
	FinishTime   string            `json:"finishTime"`
	ClanScore    int               `json:"clanScore"`
	Participants []RaceParticipant `json:"participants"`
}

// RaceParticipant 河流竞赛参与者
type RaceParticipant struct {
	Tag            string `json:"tag"`
	Name           string `json:"name"`
	Fame           int    `json:"fame"`
	RepairPoints   int    `json:"repairPoints"`
	BoatAttacks    int    `json:"boatAttacks"`
	DecksUsed      int    `json:"decksUsed"`
	DecksUsedToday int    `json:"decksUsedToday"`
}

type racelog struct {
	Items []RiverRace `json:"items"`
}

// CurrentRace 进行中的河流竞赛
type CurrentRace struct {
	State        string     `json:"state"`
	SectionIndex int        `json:"sectionIndex"`
	Clan         RaceClan   `json:"clan"`
	Clans        []RaceClan `json:"clans"`
}

// Week 第几周，从 1 开始
func (r CurrentRace) Week() int {
	return r.SectionIndex + 1
}

// APIKey 开发者平台的 key
type APIKey struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Key         string   `json:"key"`
	CidrRanges  []string `json:"cidrRanges"`
}
