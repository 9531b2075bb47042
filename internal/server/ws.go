package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"sketchparty/internal/metrics"
	"sketchparty/internal/protocol"
	"sketchparty/internal/wshub"
)

const joinDeadline = 10 * time.Second

// Drawing deltas arrive at mouse-move frequency, so the per-connection
// limiter has to be generous; it only exists to stop a hostile client from
// flooding a room.
const (
	eventsPerSecond = 100
	eventBurst      = 200
)

// handleWS upgrades the connection and runs its read loop. Authentication
// happens before the upgrade so an anonymous client gets a plain 401.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	identity, err := s.Auth.FromRequest(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("[WS] Accept: %v\n", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "")

	ctx := r.Context()
	connID := uuid.New().String()

	// The first frame must name the game to join.
	joinCtx, cancel := context.WithTimeout(ctx, joinDeadline)
	_, data, err := conn.Read(joinCtx)
	cancel()
	if err != nil {
		return
	}
	var join protocol.ClientMessage
	if err := json.Unmarshal(data, &join); err != nil || join.Type != protocol.EvtJoinGame {
		writeDirect(ctx, conn, protocol.ServerMessage{
			Type:  protocol.EvtErrorMessage,
			Error: "expected join_game",
		})
		conn.Close(websocket.StatusPolicyViolation, "expected join_game")
		return
	}

	room, err := s.Rooms.GetOrCreate(join.GameID)
	if err != nil {
		writeDirect(ctx, conn, protocol.ServerMessage{
			Type:     protocol.EvtErrorMessage,
			Error:    err.Error(),
			Redirect: "/",
		})
		conn.Close(websocket.StatusNormalClosure, "not joinable")
		return
	}

	client := wshub.NewClient(identity, connID, conn)
	writeCtx, cancelWrite := context.WithCancel(context.Background())
	defer cancelWrite()
	go client.WritePump(writeCtx)

	if displaced := room.Hub.Register(client); displaced != nil {
		// The old tab gets told why, then its write pump drains the notice
		// and closes the socket, which unblocks that handler's read loop.
		notice, _ := json.Marshal(protocol.ServerMessage{
			Type:     protocol.EvtErrorMessage,
			Error:    "you joined this game from another connection",
			Redirect: "/",
		})
		select {
		case displaced.Send <- notice:
		default:
		}
		close(displaced.Send)
	}
	room.Game.Join(identity, connID)
	log.Printf("[WS] %s joined game %s\n", identity, room.Code)

	limiter := rate.NewLimiter(rate.Limit(eventsPerSecond), eventBurst)
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			break
		}
		if !limiter.Allow() {
			metrics.EventsDropped.Inc()
			continue
		}
		var msg protocol.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type == "" || msg.Type == protocol.EvtJoinGame {
			continue
		}
		metrics.EventsTotal.WithLabelValues(msg.Type).Inc()
		room.Game.HandleMessage(identity, connID, msg)
	}

	bound := room.Hub.Unregister(identity, connID)
	room.Game.Disconnect(identity, connID, bound)
	log.Printf("[WS] %s left game %s\n", identity, room.Code)
}

// writeDirect is for errors before the client is registered with a hub.
func writeDirect(ctx context.Context, conn *websocket.Conn, msg protocol.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	conn.Write(writeCtx, websocket.MessageText, data)
}
