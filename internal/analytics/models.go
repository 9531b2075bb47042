package analytics

import "time"

type LeaderboardEntry struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type UserStats struct {
	Name        string  `json:"name"`
	GamesPlayed int     `json:"gamesPlayed"`
	TotalPoints int     `json:"totalPoints"`
	Wins        int     `json:"wins"`
	WinRate     float64 `json:"winRate"` // percent
	BestGame    int     `json:"bestGame"`
	AvgPlace    float64 `json:"avgPlacement"`

	TotalGuesses int `json:"totalGuesses"`
	// FastestGuessMs is the most clock a correct guess ever left standing.
	FastestGuessMs int `json:"fastestGuessMs"`
}

type GameSummary struct {
	Code      string         `json:"code"`
	Winner    string         `json:"winner"`
	NumRounds int            `json:"numRounds"`
	EndedAt   *time.Time     `json:"endedAt,omitempty"`
	Players   []GamePlacement `json:"players"`
}

type GamePlacement struct {
	Name      string `json:"name"`
	Points    int    `json:"points"`
	Placement int    `json:"placement"`
}
