package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type UserRecord struct {
	Name      string
	Games     int
	Points    int
	Wins      int
	CreatedAt time.Time
}

// EnsureUser registers a name on first login. Lifetime totals start at zero
// and are only ever bumped by RecordResult.
func (d *DB) EnsureUser(name string) error {
	_, err := d.conn.Exec(`
		INSERT INTO users (name) VALUES ($1)
		ON CONFLICT (name) DO NOTHING
	`, name)
	if err != nil {
		return fmt.Errorf("ensuring user: %w", err)
	}
	return nil
}

var ErrUserNotFound = errors.New("user not found")

func (d *DB) GetUser(name string) (*UserRecord, error) {
	var u UserRecord
	err := d.conn.QueryRow(`
		SELECT name, games, points, wins, created_at FROM users WHERE name = $1
	`, name).Scan(&u.Name, &u.Games, &u.Points, &u.Wins, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &u, nil
}
