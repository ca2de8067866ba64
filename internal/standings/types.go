package standings

// Unranked is the rank value stored until the stats provider reports a real one.
const Unranked = "unranked"

// Period is one of the fixed scoring windows.
type Period string

const (
	Daily    Period = "daily"
	Weekly   Period = "weekly"
	Season   Period = "season"
	Lifetime Period = "lifetime"
)

// Periods lists every period in the order they are processed.
var Periods = []Period{Daily, Weekly, Season, Lifetime}

// Stats is the statistics bag tracked per player and period.
type Stats struct {
	Wins         int    `json:"wins" msgpack:"wins"`
	Eliminations int    `json:"eliminations" msgpack:"eliminations"`
	Assists      int    `json:"assists" msgpack:"assists"`
	Damage       int    `json:"damage" msgpack:"damage"`
	Level        int    `json:"level" msgpack:"level"`
	BRRank       string `json:"br_rank" msgpack:"br_rank"`
	ZBRank       string `json:"zb_rank" msgpack:"zb_rank"`
}

// PlayerRecord is what the store keeps for one member in one period.
type PlayerRecord struct {
	Username string `json:"username"`
	Stats    Stats  `json:"stats"`
}

// PeriodStore maps a member key (Slack user ID) to its record.
type PeriodStore map[string]PlayerRecord

// PostRef identifies a published leaderboard message.
type PostRef struct {
	Channel string `json:"channel"`
	TS      string `json:"ts"`
}

// RootStore is the whole persisted document.
type RootStore struct {
	Daily    PeriodStore       `json:"daily"`
	Weekly   PeriodStore       `json:"weekly"`
	Season   PeriodStore       `json:"season"`
	Lifetime PeriodStore       `json:"lifetime"`
	Channels map[Period]string `json:"channels"`
	// Posts remembers the last leaderboard message per period so it can be
	// edited instead of re-discovered from channel history.
	Posts map[Period]PostRef `json:"posts,omitempty"`
	// Removed records unregistered members (unix seconds) so a later
	// backup merge does not bring them back.
	Removed map[string]int64 `json:"removed,omitempty"`
}

// Identity is how the chat platform presents a member.
type Identity struct {
	DisplayName string
}

// LeaderboardEntry is one ranked row. It is derived and never persisted.
type LeaderboardEntry struct {
	Rank      int
	MemberKey string
	Identity  Identity
	Username  string
	Stats     Stats
}

// StatField names a single stat that can be queried on its own.
type StatField string

const (
	StatBRRank StatField = "br_rank"
	StatZBRank StatField = "zb_rank"
)
