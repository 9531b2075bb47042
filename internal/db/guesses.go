package db

import (
	"fmt"
	"time"
)

// GuessRecord is the analytics row for one correct guess.
type GuessRecord struct {
	GameCode    string
	PlayerName  string
	Word        string
	Points      int
	RemainingMs int
	GuessedAt   time.Time
}

func (d *DB) RecordGuess(g GuessRecord) error {
	_, err := d.conn.Exec(`
		INSERT INTO guess_events (game_code, player_name, word, points, remaining_ms, guessed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, g.GameCode, g.PlayerName, g.Word, g.Points, g.RemainingMs, g.GuessedAt)
	if err != nil {
		return fmt.Errorf("recording guess: %w", err)
	}
	return nil
}

func (d *DB) BatchRecordGuesses(records []GuessRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO guess_events (game_code, player_name, word, points, remaining_ms, guessed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, g := range records {
		if _, err := stmt.Exec(g.GameCode, g.PlayerName, g.Word, g.Points, g.RemainingMs, g.GuessedAt); err != nil {
			return fmt.Errorf("recording guess in batch: %w", err)
		}
	}

	return tx.Commit()
}
