package db

import (
	"database/sql"
	"errors"
	"fmt"

	"sketchparty/internal/game"
)

// *DB implements game.GameStore: the games table is the source of truth for
// whether a code is joinable, and RecordResult writes the final standings.

func (d *DB) CreateGame(code string) error {
	_, err := d.conn.Exec(`
		INSERT INTO games (code, status) VALUES ($1, $2)
	`, code, string(game.StatusNotStarted))
	if err != nil {
		return fmt.Errorf("creating game: %w", err)
	}
	return nil
}

func (d *DB) GameStatus(code string) (game.Status, error) {
	var status string
	err := d.conn.QueryRow(`
		SELECT status FROM games WHERE code = $1
	`, code).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", game.ErrGameNotFound
	}
	if err != nil {
		return "", fmt.Errorf("getting game status: %w", err)
	}
	return game.Status(status), nil
}

func (d *DB) SetGameStatus(code string, status game.Status) error {
	res, err := d.conn.Exec(`
		UPDATE games SET status = $2 WHERE code = $1
	`, code, string(status))
	if err != nil {
		return fmt.Errorf("setting game status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return game.ErrGameNotFound
	}
	return nil
}

// RecordResult closes out a game in one transaction: the games row gets its
// terminal status and winner, every placement lands in game_players, and
// each player's lifetime totals are bumped.
func (d *DB) RecordResult(res game.Result) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE games SET status = $2, winner = $3, num_rounds = $4, ended_at = now()
		WHERE code = $1
	`, res.GameID, string(game.StatusEnded), res.Winner, res.NumRounds)
	if err != nil {
		return fmt.Errorf("ending game: %w", err)
	}

	for _, p := range res.Players {
		_, err = tx.Exec(`
			INSERT INTO game_players (game_code, player_name, points, placement)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (game_code, player_name) DO UPDATE SET points = $3, placement = $4
		`, res.GameID, p.Name, p.Points, p.Placement)
		if err != nil {
			return fmt.Errorf("recording placement for %s: %w", p.Name, err)
		}

		won := 0
		if p.Name == res.Winner {
			won = 1
		}
		_, err = tx.Exec(`
			INSERT INTO users (name, games, points, wins)
			VALUES ($1, 1, $2, $3)
			ON CONFLICT (name) DO UPDATE
			SET games = users.games + 1, points = users.points + $2, wins = users.wins + $3
		`, p.Name, p.Points, won)
		if err != nil {
			return fmt.Errorf("updating stats for %s: %w", p.Name, err)
		}
	}

	return tx.Commit()
}
