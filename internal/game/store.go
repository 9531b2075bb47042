package game

import "sync"

// MemoryStore is an in-memory GameStore. It backs the server when no
// DATABASE_URL is configured, and tests.
type MemoryStore struct {
	mu      sync.Mutex
	games   map[string]Status
	results map[string]Result
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games:   make(map[string]Status),
		results: make(map[string]Result),
	}
}

func (s *MemoryStore) CreateGame(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[id] = StatusNotStarted
	return nil
}

func (s *MemoryStore) GameStatus(id string) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.games[id]
	if !ok {
		return "", ErrGameNotFound
	}
	return status, nil
}

func (s *MemoryStore) SetGameStatus(id string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return ErrGameNotFound
	}
	s.games[id] = status
	return nil
}

func (s *MemoryStore) RecordResult(res Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[res.GameID] = StatusEnded
	s.results[res.GameID] = res
	return nil
}

// Result returns the recorded result for a game, if any.
func (s *MemoryStore) Result(id string) (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.results[id]
	return res, ok
}
