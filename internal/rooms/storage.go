package rooms

import (
	"sync"
	"time"

	"sketchparty/internal/game"
	"sketchparty/internal/metrics"
	"sketchparty/internal/wshub"
)

const staleTTL = 1 * time.Hour

// Store is the room registry: game code -> live room, created on first join,
// removed when the game ends.
type Store struct {
	mu    sync.Mutex
	rooms map[string]*Room

	cfg       game.Config
	gameStore game.GameStore
	words     game.WordPicker

	// OnGuess, when set before rooms are created, receives an analytics
	// record for every correct guess.
	OnGuess func(ev game.GuessEvent)
}

func NewStore(cfg game.Config, gameStore game.GameStore, words game.WordPicker) *Store {
	s := &Store{
		rooms:     make(map[string]*Room),
		cfg:       cfg,
		gameStore: gameStore,
		words:     words,
	}
	go s.sweepStale()
	return s
}

// GetOrCreate returns the live room for code, creating it if the persistence
// collaborator says the game exists and is still joinable. A room that is
// already live locally is always joinable regardless of remote status (the
// local room is the mirror).
func (s *Store) GetOrCreate(code string) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if room, ok := s.rooms[code]; ok {
		return room, nil
	}

	status, err := s.gameStore.GameStatus(code)
	if err != nil {
		return nil, err
	}
	switch status {
	case game.StatusActive:
		return nil, game.ErrGameInProgress
	case game.StatusEnded:
		return nil, game.ErrGameFinished
	}

	hub := wshub.NewHub()
	room := &Room{
		Code:      code,
		Hub:       hub,
		CreatedAt: time.Now(),
	}
	room.Game = game.New(code, s.cfg, game.Deps{
		Store:   s.gameStore,
		Words:   s.words,
		Sender:  hub,
		OnClose: s.Remove,
		OnGuess: s.OnGuess,
	})
	go room.Game.Run()

	s.rooms[code] = room
	metrics.RoomsActive.Inc()
	return room, nil
}

func (s *Store) Get(code string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[code]
}

func (s *Store) Remove(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[code]; ok {
		delete(s.rooms, code)
		metrics.RoomsActive.Dec()
	}
}

func (s *Store) List() []*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		list = append(list, r)
	}
	return list
}

// sweepStale drops rooms that everyone abandoned without the game ever
// reaching its terminal transition.
func (s *Store) sweepStale() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for code, room := range s.rooms {
			if room.Game.Empty() && now.Sub(room.CreatedAt) > staleTTL {
				room.Game.Close()
				delete(s.rooms, code)
				metrics.RoomsActive.Dec()
			}
		}
		s.mu.Unlock()
	}
}
