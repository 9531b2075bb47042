package game

import (
	"testing"

	"sketchparty/internal/protocol"
)

func TestJoin_AddsPlayerAndBroadcasts(t *testing.T) {
	tr := newTestRoom(t)
	tr.join("alice", "conn-alice")

	if len(tr.room.players) != 1 || tr.room.players[0].Name != "alice" {
		t.Fatalf("players = %+v, want just alice", tr.room.players)
	}
	joined := tr.send.last(t, protocol.EvtUserJoined)
	if joined.audience != "all" {
		t.Errorf("user_joined audience = %q, want all (sender included)", joined.audience)
	}
	if joined.msg.User != "alice" || len(joined.msg.Players) != 1 {
		t.Errorf("user_joined payload = %+v", joined.msg)
	}
	if tr.room.players[0].Color == "" {
		t.Error("player should get a color assigned")
	}
}

func TestJoin_PreservesOrder(t *testing.T) {
	tr := newTestRoom(t)
	tr.join("alice", "conn-alice")
	tr.join("bob", "conn-bob")
	tr.join("carol", "conn-carol")

	names := []string{}
	for _, p := range tr.room.players {
		names = append(names, p.Name)
	}
	want := []string{"alice", "bob", "carol"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("player order = %v, want %v", names, want)
		}
	}
}

func TestJoin_SameIdentityDoesNotDuplicate(t *testing.T) {
	tr := newTestRoom(t)
	tr.join("alice", "conn-1")
	tr.join("alice", "conn-2") // second tab

	if len(tr.room.players) != 1 {
		t.Fatalf("players = %d, want 1 after rejoin", len(tr.room.players))
	}
	// Both joins announce the (unchanged) roster.
	if got := len(tr.send.ofType(protocol.EvtUserJoined)); got != 2 {
		t.Errorf("user_joined broadcasts = %d, want 2", got)
	}
}

func TestDisconnect_RemovesPlayerAndBroadcasts(t *testing.T) {
	tr := newTestRoom(t)
	tr.join("alice", "conn-alice")
	tr.join("bob", "conn-bob")

	tr.room.Disconnect("alice", "conn-alice", true)
	tr.room.drain()

	if len(tr.room.players) != 1 || tr.room.players[0].Name != "bob" {
		t.Fatalf("players = %+v, want just bob", tr.room.players)
	}
	left := tr.send.last(t, protocol.EvtUserLeft)
	if left.msg.User != "alice" || len(left.msg.Players) != 1 {
		t.Errorf("user_left payload = %+v", left.msg)
	}
}

func TestDisconnect_StaleConnectionIgnored(t *testing.T) {
	tr := newTestRoom(t)
	tr.join("alice", "conn-1")
	tr.join("alice", "conn-2")

	// The displaced tab drops; the player must stay.
	tr.room.Disconnect("alice", "conn-1", false)
	tr.room.drain()

	if len(tr.room.players) != 1 {
		t.Fatalf("players = %d, want 1", len(tr.room.players))
	}
	if len(tr.send.ofType(protocol.EvtUserLeft)) != 0 {
		t.Error("no user_left should be broadcast for a stale connection")
	}
}

func TestEmpty(t *testing.T) {
	tr := newTestRoom(t)
	if !tr.room.Empty() {
		t.Error("fresh room should be empty")
	}
	tr.join("alice", "conn-alice")
	if tr.room.Empty() {
		t.Error("room with a player is not empty")
	}
	tr.room.Disconnect("alice", "conn-alice", true)
	tr.room.drain()
	if !tr.room.Empty() {
		t.Error("room should be empty after the last disconnect")
	}
}

func TestLineStart_AssignsCanonicalID(t *testing.T) {
	tr := newTestRoom(t)
	tr.join("alice", "conn-alice")
	tr.join("bob", "conn-bob")

	tr.message("alice", "conn-alice", protocol.ClientMessage{
		Type: protocol.EvtLineStart,
		Line: &protocol.Line{ID: "local-1", Points: []protocol.Point{{X: 1, Y: 2}}, Color: "#000000", Width: 3},
	})

	start := tr.send.last(t, protocol.EvtLineStart)
	if start.audience != "except" || start.target != "alice" {
		t.Errorf("line_start should go to everyone but the sender, got %+v", start)
	}
	canonical := start.msg.Line.ID
	if canonical == "" || canonical == "local-1" {
		t.Errorf("canonical id = %q, want a fresh server-assigned id", canonical)
	}

	ack := tr.send.last(t, protocol.EvtLineAck)
	if ack.audience != "to" || ack.target != "alice" {
		t.Errorf("line_ack should be sender-only, got %+v", ack)
	}
	if ack.msg.LocalID != "local-1" || ack.msg.LineID != canonical {
		t.Errorf("line_ack payload = %+v", ack.msg)
	}

	if tr.room.strokes[canonical] == nil {
		t.Fatal("stroke not recorded under canonical id")
	}
}

func TestLineUpdate_AppendsPoints(t *testing.T) {
	tr := newTestRoom(t)
	tr.join("alice", "conn-alice")
	tr.join("bob", "conn-bob")

	tr.message("alice", "conn-alice", protocol.ClientMessage{
		Type: protocol.EvtLineStart,
		Line: &protocol.Line{ID: "local-1", Points: []protocol.Point{{X: 1, Y: 1}}},
	})
	canonical := tr.send.last(t, protocol.EvtLineAck).msg.LineID

	tr.message("alice", "conn-alice", protocol.ClientMessage{
		Type:      protocol.EvtLineUpdate,
		LineID:    "local-1",
		NewPoints: []protocol.Point{{X: 2, Y: 2}, {X: 3, Y: 3}},
	})

	update := tr.send.last(t, protocol.EvtLineUpdate)
	if update.msg.LineID != canonical {
		t.Errorf("line_update id = %q, want canonical %q", update.msg.LineID, canonical)
	}
	if got := len(tr.room.strokes[canonical].Points); got != 3 {
		t.Errorf("stored points = %d, want 3", got)
	}
}

func TestLineUpdate_UnresolvedIDIsNoOp(t *testing.T) {
	tr := newTestRoom(t)
	tr.join("alice", "conn-alice")

	tr.message("alice", "conn-alice", protocol.ClientMessage{
		Type:      protocol.EvtLineUpdate,
		LineID:    "never-started",
		NewPoints: []protocol.Point{{X: 1, Y: 1}},
	})

	if len(tr.send.ofType(protocol.EvtLineUpdate)) != 0 {
		t.Error("unresolved line_update must not be broadcast")
	}
}

// A client that joins after line_start but before line_end must end up with
// the identical stroke: same canonical id, same 6 points, same color/width.
func TestStrokeRoundTrip_MidStrokeJoiner(t *testing.T) {
	tr := newTestRoom(t)
	tr.join("alice", "conn-alice")
	tr.join("bob", "conn-bob")

	tr.message("alice", "conn-alice", protocol.ClientMessage{
		Type: protocol.EvtLineStart,
		Line: &protocol.Line{ID: "local-1", Points: []protocol.Point{{X: 0, Y: 0}}, Color: "#ff0000", Width: 2},
	})
	canonical := tr.send.last(t, protocol.EvtLineAck).msg.LineID

	tr.join("carol", "conn-carol") // joins mid-stroke

	tr.message("alice", "conn-alice", protocol.ClientMessage{
		Type:   protocol.EvtLineUpdate,
		LineID: "local-1",
		NewPoints: []protocol.Point{
			{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}, {X: 4, Y: 4}, {X: 5, Y: 5},
		},
	})

	full := []protocol.Point{
		{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}, {X: 4, Y: 4}, {X: 5, Y: 5},
	}
	tr.message("alice", "conn-alice", protocol.ClientMessage{
		Type: protocol.EvtLineEnd,
		Line: &protocol.Line{ID: "local-1", Points: full, Color: "#ff0000", Width: 2},
	})

	end := tr.send.last(t, protocol.EvtLineEnd)
	if end.audience != "all" {
		t.Errorf("line_end audience = %q, want all (sender reconciles its optimistic copy)", end.audience)
	}
	if end.msg.Line.ID != canonical {
		t.Errorf("line_end id = %q, want %q", end.msg.Line.ID, canonical)
	}
	if len(end.msg.Line.Points) != 6 {
		t.Errorf("line_end points = %d, want 6", len(end.msg.Line.Points))
	}
	if end.msg.Line.Color != "#ff0000" || end.msg.Line.Width != 2 {
		t.Errorf("line_end style = %q/%v", end.msg.Line.Color, end.msg.Line.Width)
	}

	stored := tr.room.strokes[canonical]
	if len(stored.Points) != 6 {
		t.Errorf("stored points = %d, want 6", len(stored.Points))
	}
}

func TestClearLines(t *testing.T) {
	tr := newTestRoom(t)
	tr.join("alice", "conn-alice")
	tr.join("bob", "conn-bob")

	tr.message("alice", "conn-alice", protocol.ClientMessage{
		Type: protocol.EvtLineStart,
		Line: &protocol.Line{ID: "local-1", Points: []protocol.Point{{X: 1, Y: 1}}},
	})
	tr.message("alice", "conn-alice", protocol.ClientMessage{Type: protocol.EvtClearLines})

	if len(tr.room.strokes) != 0 {
		t.Error("strokes should be wiped")
	}
	clear := tr.send.last(t, protocol.EvtClearLines)
	if clear.audience != "except" || clear.target != "alice" {
		t.Errorf("clear_lines should skip the sender, got %+v", clear)
	}

	// Updates against the cleared stroke resolve to nothing and are dropped.
	tr.send.reset()
	tr.message("alice", "conn-alice", protocol.ClientMessage{
		Type:      protocol.EvtLineUpdate,
		LineID:    "local-1",
		NewPoints: []protocol.Point{{X: 9, Y: 9}},
	})
	if len(tr.send.ofType(protocol.EvtLineUpdate)) != 0 {
		t.Error("update after clear must be a silent no-op")
	}
}
