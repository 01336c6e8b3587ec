package leaderboard

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/timed-trivia/internal/quiz"
)

// Celebration messages keyed by finishing position.
const (
	MessageFirst   = "AMAZING! YOU'RE #1"
	MessageSecond  = "SO CLOSE TO THE TOP!"
	MessageThird   = "GREAT JOB ON THE PODIUM!"
	MessageTopFive = "NICELY DONE!"
	MessageOther   = "KEEP PRACTICING!"
)

// Entry is one ranked leaderboard row.
type Entry struct {
	Rank          int    `json:"rank"`
	PlayerID      string `json:"player_id"`
	Name          string `json:"name"`
	Score         int    `json:"score"`
	TimeBonus     int    `json:"time_bonus"`
	TotalScore    int    `json:"total_score"`
	CurrentPlayer bool   `json:"current_player,omitempty"`
}

// Standings is the leaderboard as seen by a player who just finished.
type Standings struct {
	Entries    []Entry `json:"entries"`
	PlayerRank int     `json:"player_rank"`
	OnPodium   bool    `json:"on_podium"`
	Message    string  `json:"message"`
}

// Service ranks finished players against a static set of competitors.
// It holds no live players; every call ranks in isolation.
type Service struct {
	competitors []Competitor
	logger      zerolog.Logger
}

// NewService constructs a leaderboard service. Nil competitors use DefaultCompetitors.
func NewService(competitors []Competitor, logger zerolog.Logger) *Service {
	if competitors == nil {
		competitors = DefaultCompetitors()
	}
	owned := make([]Competitor, len(competitors))
	copy(owned, competitors)
	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].TotalScore > owned[j].TotalScore
	})
	return &Service{
		competitors: owned,
		logger:      logger.With().Str("component", "leaderboard_service").Logger(),
	}
}

// Top returns up to limit competitors in rank order. limit <= 0 returns all.
func (s *Service) Top(limit int) []Entry {
	n := len(s.competitors)
	if limit > 0 && limit < n {
		n = limit
	}
	entries := make([]Entry, n)
	for i := 0; i < n; i++ {
		entries[i] = competitorEntry(i+1, s.competitors[i])
	}
	return entries
}

// Rank merges player into the competitors ordered by total score. The player is
// placed after any competitor with an equal total.
func (s *Service) Rank(player quiz.Player) Standings {
	entries := make([]Entry, 0, len(s.competitors)+1)
	placed := false
	for _, c := range s.competitors {
		if !placed && player.TotalScore > c.TotalScore {
			entries = append(entries, playerEntry(player))
			placed = true
		}
		entries = append(entries, competitorEntry(0, c))
	}
	if !placed {
		entries = append(entries, playerEntry(player))
	}

	rank := 0
	for i := range entries {
		entries[i].Rank = i + 1
		if entries[i].CurrentPlayer {
			rank = i + 1
		}
	}

	s.logger.Debug().
		Str("player_id", player.ID).
		Int("total_score", player.TotalScore).
		Int("rank", rank).
		Msg("player ranked")

	return Standings{
		Entries:    entries,
		PlayerRank: rank,
		OnPodium:   rank <= 3,
		Message:    CelebrationMessage(rank),
	}
}

// CelebrationMessage returns the banner shown for a finishing position.
func CelebrationMessage(rank int) string {
	switch {
	case rank == 1:
		return MessageFirst
	case rank == 2:
		return MessageSecond
	case rank == 3:
		return MessageThird
	case rank <= 5:
		return MessageTopFive
	default:
		return MessageOther
	}
}

func competitorEntry(rank int, c Competitor) Entry {
	return Entry{
		Rank:       rank,
		PlayerID:   c.ID,
		Name:       c.Name,
		Score:      c.Score,
		TimeBonus:  c.TimeBonus,
		TotalScore: c.TotalScore,
	}
}

func playerEntry(p quiz.Player) Entry {
	return Entry{
		PlayerID:      p.ID,
		Name:          p.Name,
		Score:         p.Score,
		TimeBonus:     p.TimeBonus,
		TotalScore:    p.TotalScore,
		CurrentPlayer: true,
	}
}
