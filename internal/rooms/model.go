package rooms

import (
	"time"

	"sketchparty/internal/game"
	"sketchparty/internal/wshub"
)

// Room pairs a live game with the hub carrying its connections.
type Room struct {
	Code      string
	Game      *game.Room
	Hub       *wshub.Hub
	CreatedAt time.Time
}
