package leaderboard

// Competitor is a fixed leaderboard row the player is ranked against.
type Competitor struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Score      int    `json:"score"`
	TimeBonus  int    `json:"time_bonus"`
	TotalScore int    `json:"total_score"`
}

// DefaultCompetitors returns the house leaderboard.
func DefaultCompetitors() []Competitor {
	return []Competitor{
		{ID: "player2", Name: "Quiz Wizard", Score: 950, TimeBonus: 250, TotalScore: 1200},
		{ID: "player3", Name: "Brain Storm", Score: 900, TimeBonus: 200, TotalScore: 1100},
		{ID: "player4", Name: "Trivia Master", Score: 850, TimeBonus: 150, TotalScore: 1000},
		{ID: "player5", Name: "Knowledge Hunter", Score: 780, TimeBonus: 180, TotalScore: 960},
		{ID: "player6", Name: "Quick Thinker", Score: 750, TimeBonus: 190, TotalScore: 940},
		{ID: "player7", Name: "Fact Finder", Score: 700, TimeBonus: 120, TotalScore: 820},
		{ID: "player8", Name: "Puzzle Solver", Score: 650, TimeBonus: 100, TotalScore: 750},
		{ID: "player9", Name: "Quiz Rookie", Score: 500, TimeBonus: 50, TotalScore: 550},
	}
}
