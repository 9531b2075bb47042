package game

import (
	"testing"
	"time"

	"sketchparty/internal/protocol"
	"sketchparty/internal/words"
)

// fakeSender records every outbound message with its audience.
type sentMsg struct {
	audience string // "all", "except", "to", "subset"
	target   string
	targets  []string
	msg      protocol.ServerMessage
}

type fakeSender struct {
	sent []sentMsg
}

func (s *fakeSender) Broadcast(msg protocol.ServerMessage) {
	s.sent = append(s.sent, sentMsg{audience: "all", msg: msg})
}

func (s *fakeSender) BroadcastExcept(identity string, msg protocol.ServerMessage) {
	s.sent = append(s.sent, sentMsg{audience: "except", target: identity, msg: msg})
}

func (s *fakeSender) SendTo(identity string, msg protocol.ServerMessage) {
	s.sent = append(s.sent, sentMsg{audience: "to", target: identity, msg: msg})
}

func (s *fakeSender) SendSubset(identities []string, msg protocol.ServerMessage) {
	s.sent = append(s.sent, sentMsg{audience: "subset", targets: identities, msg: msg})
}

func (s *fakeSender) ofType(eventType string) []sentMsg {
	var out []sentMsg
	for _, m := range s.sent {
		if m.msg.Type == eventType {
			out = append(out, m)
		}
	}
	return out
}

func (s *fakeSender) last(t *testing.T, eventType string) sentMsg {
	t.Helper()
	msgs := s.ofType(eventType)
	if len(msgs) == 0 {
		t.Fatalf("no %q message sent; sent: %+v", eventType, s.sent)
	}
	return msgs[len(msgs)-1]
}

func (s *fakeSender) reset() { s.sent = nil }

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// fakeScheduler captures scheduled callbacks so tests fire them explicitly.
type fakeTask struct {
	delay time.Duration
	fn    func()
	fired bool
}

type fakeScheduler struct {
	tasks []*fakeTask
}

func (s *fakeScheduler) AfterFunc(d time.Duration, fn func()) {
	s.tasks = append(s.tasks, &fakeTask{delay: d, fn: fn})
}

// fireNext runs the oldest unfired task. The callback only posts a command;
// callers drain the room afterwards.
func (s *fakeScheduler) fireNext(t *testing.T) {
	t.Helper()
	for _, task := range s.tasks {
		if !task.fired {
			task.fired = true
			task.fn()
			return
		}
	}
	t.Fatal("no pending scheduled task")
}

func (s *fakeScheduler) pending() int {
	n := 0
	for _, task := range s.tasks {
		if !task.fired {
			n++
		}
	}
	return n
}

type testRoom struct {
	room  *Room
	send  *fakeSender
	clock *fakeClock
	sched *fakeScheduler
	store *MemoryStore

	closedWith []string
}

func newTestRoom(t *testing.T) *testRoom {
	t.Helper()
	tr := &testRoom{
		send:  &fakeSender{},
		clock: &fakeClock{now: time.Unix(1700000000, 0)},
		sched: &fakeScheduler{},
		store: NewMemoryStore(),
	}
	tr.store.CreateGame("room1")
	tr.room = New("room1", DefaultConfig(), Deps{
		Store:     tr.store,
		Words:     words.NewMemoryPicker([]string{"cactus", "rocket", "ice cream", "snowman", "umbrella"}),
		Sender:    tr.send,
		Clock:     tr.clock,
		Scheduler: tr.sched,
		OnClose:   func(id string) { tr.closedWith = append(tr.closedWith, id) },
	})
	return tr
}

func (tr *testRoom) join(identity, connID string) {
	tr.room.Join(identity, connID)
	tr.room.drain()
}

func (tr *testRoom) message(identity, connID string, msg protocol.ClientMessage) {
	tr.room.HandleMessage(identity, connID, msg)
	tr.room.drain()
}

func (tr *testRoom) chat(identity, text string) {
	tr.message(identity, "conn-"+identity, protocol.ClientMessage{Type: protocol.EvtSendMessage, Message: text})
}

// start brings the room into a running countdown: start_game then the
// pre-roll timer.
func (tr *testRoom) start(t *testing.T, starter string) {
	t.Helper()
	tr.message(starter, "conn-"+starter, protocol.ClientMessage{Type: protocol.EvtStartGame})
	if tr.room.status != StatusActive {
		t.Fatalf("start_game did not activate room; status=%s", tr.room.status)
	}
	tr.sched.fireNext(t) // pre-roll -> start_turn
	tr.room.drain()
}
