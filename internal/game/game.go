package game

import (
	"errors"
	"time"

	"sketchparty/internal/protocol"
)

// Status is the lifecycle of a game. Transitions only ever move forward:
// not_started -> active -> ended.
type Status string

const (
	StatusNotStarted = Status("not_started")
	StatusActive     = Status("active")
	StatusEnded      = Status("ended")
)

var (
	ErrGameNotFound   = errors.New("game does not exist")
	ErrGameInProgress = errors.New("game already in progress")
	ErrGameFinished   = errors.New("game has ended")
)

type Player struct {
	Name   string
	Points int
	Color  string
}

// Round is one drawer's turn. DrawerIndex is fixed when the turn begins and
// may go stale if players leave; everything that reads it re-validates first.
// EndTime stays zero until the countdown actually starts.
type Round struct {
	RoundNum    int
	DrawerIndex int
	DrawerName  string // snapshot of players[DrawerIndex].Name at turn start
	EndTime     time.Time
	Word        string

	// ActiveGuessers maps player name -> still eligible to guess. Keys are
	// set once at turn start (every non-drawer, true) and only ever flip to
	// false or get removed when a player leaves.
	ActiveGuessers map[string]bool
}

type Stroke struct {
	ID     string
	Points []protocol.Point
	Color  string
	Width  float64
}

// Placement is one row of the final standings.
type Placement struct {
	Name      string
	Points    int
	Placement int
}

// Result is what gets persisted when a game reaches its terminal state.
type Result struct {
	GameID    string
	NumRounds int
	Winner    string
	Players   []Placement
}

// GuessEvent is an analytics record of one correct guess. Rooms hand these
// to an optional sink; losing them never affects gameplay.
type GuessEvent struct {
	GameID    string
	Player    string
	Word      string
	Points    int
	Remaining time.Duration
	GuessedAt time.Time
}

// GameStore is the persistence collaborator: the source of truth for whether
// a game exists and is joinable, and the sink for final results.
type GameStore interface {
	CreateGame(id string) error
	GameStatus(id string) (Status, error)
	SetGameStatus(id string, status Status) error
	RecordResult(res Result) error
}

// WordPicker is the word-selection collaborator.
type WordPicker interface {
	RandomWord(exclude map[string]bool) (string, error)
}

// Sender fans outbound events out to the room's connections. *wshub.Hub
// satisfies it.
type Sender interface {
	Broadcast(msg protocol.ServerMessage)
	BroadcastExcept(identity string, msg protocol.ServerMessage)
	SendTo(identity string, msg protocol.ServerMessage)
	SendSubset(identities []string, msg protocol.ServerMessage)
}

// Clock and Scheduler isolate the turn machinery from real time so tests can
// drive it deterministically.
type Clock interface {
	Now() time.Time
}

type Scheduler interface {
	AfterFunc(d time.Duration, fn func())
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, fn func()) { time.AfterFunc(d, fn) }

type Config struct {
	TurnDuration time.Duration
	PrerollDelay time.Duration
	TurnGrace    time.Duration
	RoundCount   int
}

func DefaultConfig() Config {
	return Config{
		TurnDuration: 30 * time.Second,
		PrerollDelay: 3 * time.Second,
		TurnGrace:    2 * time.Second,
		RoundCount:   2,
	}
}
