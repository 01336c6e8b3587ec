package leaderboard

import ws "github.com/gokatarajesh/timed-trivia/pkg/http/ws"

// ToWSEntries converts ranked entries to their wire form.
func ToWSEntries(entries []Entry) []ws.LeaderboardEntry {
	result := make([]ws.LeaderboardEntry, len(entries))
	for i, e := range entries {
		result[i] = ws.LeaderboardEntry{
			Rank:          e.Rank,
			PlayerID:      e.PlayerID,
			Name:          e.Name,
			Score:         e.Score,
			TimeBonus:     e.TimeBonus,
			TotalScore:    e.TotalScore,
			CurrentPlayer: e.CurrentPlayer,
		}
	}
	return result
}
