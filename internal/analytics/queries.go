package analytics

import (
	"fmt"

	"sketchparty/internal/db"
)

type Queries struct {
	DB *db.DB
}

func NewQueries(database *db.DB) *Queries {
	return &Queries{DB: database}
}

func (q *Queries) GetLeaderboard(category string, limit int) ([]LeaderboardEntry, error) {
	var query string
	switch category {
	case "points":
		query = `
			SELECT name, points as value
			FROM users
			WHERE games > 0
			ORDER BY value DESC, name ASC
			LIMIT $1`
	case "wins":
		query = `
			SELECT name, wins as value
			FROM users
			WHERE games > 0
			ORDER BY value DESC, name ASC
			LIMIT $1`
	case "games":
		query = `
			SELECT name, games as value
			FROM users
			WHERE games > 0
			ORDER BY value DESC, name ASC
			LIMIT $1`
	default:
		return nil, fmt.Errorf("unknown leaderboard category %q", category)
	}

	rows, err := q.DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("getting leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []LeaderboardEntry{}
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Name, &e.Value); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (q *Queries) GetUserStats(name string) (*UserStats, error) {
	user, err := q.DB.GetUser(name)
	if err != nil {
		return nil, err
	}
	stats := &UserStats{
		Name:        user.Name,
		GamesPlayed: user.Games,
		TotalPoints: user.Points,
		Wins:        user.Wins,
	}
	if stats.GamesPlayed > 0 {
		stats.WinRate = float64(stats.Wins) / float64(stats.GamesPlayed) * 100
	}

	err = q.DB.QueryRow(`
		SELECT COALESCE(MAX(points), 0), COALESCE(AVG(placement), 0)
		FROM game_players
		WHERE player_name = $1
	`, name).Scan(&stats.BestGame, &stats.AvgPlace)
	if err != nil {
		return nil, fmt.Errorf("getting placement stats: %w", err)
	}

	err = q.DB.QueryRow(`
		SELECT COUNT(*), COALESCE(MAX(remaining_ms), 0)
		FROM guess_events
		WHERE player_name = $1
	`, name).Scan(&stats.TotalGuesses, &stats.FastestGuessMs)
	if err != nil {
		return nil, fmt.Errorf("getting guess stats: %w", err)
	}

	return stats, nil
}

func (q *Queries) GetGameSummary(code string) (*GameSummary, error) {
	summary := &GameSummary{Code: code}

	var winner *string
	var numRounds *int
	err := q.DB.QueryRow(`
		SELECT winner, num_rounds, ended_at FROM games WHERE code = $1
	`, code).Scan(&winner, &numRounds, &summary.EndedAt)
	if err != nil {
		return nil, fmt.Errorf("getting game: %w", err)
	}
	if winner != nil {
		summary.Winner = *winner
	}
	if numRounds != nil {
		summary.NumRounds = *numRounds
	}

	rows, err := q.DB.Query(`
		SELECT player_name, points, placement
		FROM game_players
		WHERE game_code = $1
		ORDER BY placement ASC
	`, code)
	if err != nil {
		return nil, fmt.Errorf("getting placements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p GamePlacement
		if err := rows.Scan(&p.Name, &p.Points, &p.Placement); err != nil {
			return nil, err
		}
		summary.Players = append(summary.Players, p)
	}
	return summary, rows.Err()
}
