package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"sketchparty/internal/words"
)

// SeedWords inserts the given words, skipping any already present. Called at
// startup so a fresh database always has a usable word pool.
func (d *DB) SeedWords(list []string) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO words (word) VALUES ($1) ON CONFLICT (word) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, w := range list {
		if _, err := stmt.Exec(w); err != nil {
			return fmt.Errorf("seeding word %q: %w", w, err)
		}
	}
	return tx.Commit()
}

// RandomWord implements game.WordPicker over the words table. Exclusion is
// best effort: when every word has been used the pool resets to the full
// table rather than stalling the game.
func (d *DB) RandomWord(exclude map[string]bool) (string, error) {
	used := make([]string, 0, len(exclude))
	for w := range exclude {
		used = append(used, w)
	}

	var word string
	err := d.conn.QueryRow(`
		SELECT word FROM words WHERE word != ALL($1) ORDER BY random() LIMIT 1
	`, pq.Array(used)).Scan(&word)
	if errors.Is(err, sql.ErrNoRows) {
		err = d.conn.QueryRow(`
			SELECT word FROM words ORDER BY random() LIMIT 1
		`).Scan(&word)
		if errors.Is(err, sql.ErrNoRows) {
			return "", words.ErrNoWords
		}
	}
	if err != nil {
		return "", fmt.Errorf("picking word: %w", err)
	}
	return word, nil
}
