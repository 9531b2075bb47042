package game

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"sketchparty/internal/protocol"
	"sketchparty/internal/utility"
)

// Room is one live game session. All state below the inbox is owned by the
// room goroutine: socket events and timer callbacks are posted as commands
// and applied one at a time, so handlers are atomic with respect to the room
// state and no locking is needed.
type Room struct {
	id  string
	cfg Config

	store   GameStore
	words   WordPicker
	send    Sender
	clock   Clock
	sched   Scheduler
	onClose func(roomID string)
	onGuess func(ev GuessEvent)

	players   []*Player
	strokes   map[string]*Stroke
	sessions  map[string]*session // connID -> per-connection state
	round     *Round
	status    Status
	phase     phase
	usedWords map[string]bool

	population atomic.Int32

	inbox     chan command
	done      chan struct{}
	closeOnce sync.Once
}

// session is the per-connection context: who the connection is, and the
// translation table from the client's local stroke ids to canonical ids for
// strokes in flight.
type session struct {
	identity     string
	localStrokes map[string]string
}

type phase int

const (
	phaseIdle      phase = iota
	phasePreroll         // drawer revealed, fixed delay before the clock starts
	phaseCountdown       // endTime set, guessing open
	phaseSummary         // turn graded, fixed delay before rotation
)

// turnKey identifies one turn. Timer callbacks carry the key they were
// scheduled for and are dropped if the live round no longer matches, which
// renders superseded timers inert without explicit cancellation.
type turnKey struct {
	roundNum    int
	drawerIndex int
}

type timerKind int

const (
	timerPreroll timerKind = iota
	timerTurnEnd
	timerNextTurn
)

type command interface{}

type joinCmd struct{ identity, connID string }

type disconnectCmd struct {
	identity, connID string
	bound            bool // whether this was the authoritative connection
}

type startGameCmd struct{ identity string }
type endTurnCmd struct{ identity string }
type endGameCmd struct{ identity string }

type chatCmd struct{ identity, text string }

type lineStartCmd struct {
	identity, connID string
	line             protocol.Line
}

type lineUpdateCmd struct {
	identity, connID, localID string
	points                    []protocol.Point
}

type lineEndCmd struct {
	identity, connID string
	line             protocol.Line
}

type clearCmd struct{ identity string }

type timerCmd struct {
	kind timerKind
	key  turnKey
}

// Deps are the collaborators a room needs. Clock and Scheduler default to
// real time when nil.
type Deps struct {
	Store     GameStore
	Words     WordPicker
	Sender    Sender
	Clock     Clock
	Scheduler Scheduler
	OnClose   func(roomID string)
	OnGuess   func(ev GuessEvent)
}

func New(id string, cfg Config, deps Deps) *Room {
	if deps.Clock == nil {
		deps.Clock = realClock{}
	}
	if deps.Scheduler == nil {
		deps.Scheduler = realScheduler{}
	}
	return &Room{
		id:        id,
		cfg:       cfg,
		store:     deps.Store,
		words:     deps.Words,
		send:      deps.Sender,
		clock:     deps.Clock,
		sched:     deps.Scheduler,
		onClose:   deps.OnClose,
		onGuess:   deps.OnGuess,
		strokes:   make(map[string]*Stroke),
		sessions:  make(map[string]*session),
		status:    StatusNotStarted,
		usedWords: make(map[string]bool),
		inbox:     make(chan command, 1024),
		done:      make(chan struct{}),
	}
}

// Run drains the command inbox until the room is closed.
func (r *Room) Run() {
	for {
		select {
		case <-r.done:
			return
		case cmd := <-r.inbox:
			r.dispatch(cmd)
		}
	}
}

// Close stops the room goroutine without persisting anything. Game-over
// paths persist first and then close.
func (r *Room) Close() {
	r.closeOnce.Do(func() { close(r.done) })
}

// Empty reports whether the room has no players. Safe from any goroutine.
func (r *Room) Empty() bool {
	return r.population.Load() == 0
}

func (r *Room) post(cmd command) {
	select {
	case <-r.done:
	case r.inbox <- cmd:
	}
}

// step processes one queued command on the caller's goroutine; tests drive
// rooms with it instead of Run.
func (r *Room) step() bool {
	select {
	case cmd := <-r.inbox:
		r.dispatch(cmd)
		return true
	default:
		return false
	}
}

func (r *Room) drain() {
	for r.step() {
	}
}

// Join binds a (possibly returning) identity to the room. The caller has
// already registered the connection with the room's hub.
func (r *Room) Join(identity, connID string) {
	r.post(joinCmd{identity: identity, connID: connID})
}

// Disconnect reports a dropped connection. bound must be true only if the
// connection was still the authoritative one for its identity; a displaced
// tab disconnecting later must not remove the player.
func (r *Room) Disconnect(identity, connID string, bound bool) {
	r.post(disconnectCmd{identity: identity, connID: connID, bound: bound})
}

// HandleMessage translates a wire event from a joined connection into a room
// command. Unknown event types are dropped.
func (r *Room) HandleMessage(identity, connID string, msg protocol.ClientMessage) {
	switch msg.Type {
	case protocol.EvtStartGame:
		r.post(startGameCmd{identity: identity})
	case protocol.EvtEndTurn:
		r.post(endTurnCmd{identity: identity})
	case protocol.EvtEndGame:
		r.post(endGameCmd{identity: identity})
	case protocol.EvtSendMessage:
		r.post(chatCmd{identity: identity, text: msg.Message})
	case protocol.EvtLineStart:
		if msg.Line != nil {
			r.post(lineStartCmd{identity: identity, connID: connID, line: *msg.Line})
		}
	case protocol.EvtLineUpdate:
		r.post(lineUpdateCmd{identity: identity, connID: connID, localID: msg.LineID, points: msg.NewPoints})
	case protocol.EvtLineEnd:
		if msg.Line != nil {
			r.post(lineEndCmd{identity: identity, connID: connID, line: *msg.Line})
		}
	case protocol.EvtClearLines:
		r.post(clearCmd{identity: identity})
	}
}

func (r *Room) dispatch(cmd command) {
	switch c := cmd.(type) {
	case joinCmd:
		r.handleJoin(c)
	case disconnectCmd:
		r.handleDisconnect(c)
	case startGameCmd:
		r.handleStartGame(c)
	case endTurnCmd:
		r.handleEndTurn(c)
	case endGameCmd:
		r.handleEndGame(c)
	case chatCmd:
		r.handleChat(c)
	case lineStartCmd:
		r.handleLineStart(c)
	case lineUpdateCmd:
		r.handleLineUpdate(c)
	case lineEndCmd:
		r.handleLineEnd(c)
	case clearCmd:
		r.handleClear(c)
	case timerCmd:
		r.handleTimer(c)
	}
}

func (r *Room) handleJoin(c joinCmd) {
	r.sessions[c.connID] = &session{
		identity:     c.identity,
		localStrokes: make(map[string]string),
	}

	if r.playerByName(c.identity) == nil {
		r.players = append(r.players, &Player{
			Name:  c.identity,
			Color: utility.RandomColorHex(),
		})
	}
	r.population.Store(int32(len(r.players)))

	r.send.Broadcast(protocol.ServerMessage{
		Type:    protocol.EvtUserJoined,
		User:    c.identity,
		MsgType: protocol.MsgTypePlayerChange,
		Players: r.playerInfos(),
	})
}

func (r *Room) handleDisconnect(c disconnectCmd) {
	delete(r.sessions, c.connID)
	if !c.bound {
		return
	}

	idx := -1
	for i, p := range r.players {
		if p.Name == c.identity {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	r.players = append(r.players[:idx], r.players[idx+1:]...)
	r.population.Store(int32(len(r.players)))

	if r.round != nil {
		delete(r.round.ActiveGuessers, c.identity)
	}

	r.send.Broadcast(protocol.ServerMessage{
		Type:    protocol.EvtUserLeft,
		User:    c.identity,
		MsgType: protocol.MsgTypePlayerChange,
		Players: r.playerInfos(),
	})

	if r.status != StatusActive {
		return
	}
	if len(r.players) < 2 {
		r.endGame()
		return
	}
	// The departed player may have been the last active guesser.
	if r.phase == phaseCountdown && r.allGuessed() {
		r.endTurn()
	}
}

func (r *Room) handleEndGame(c endGameCmd) {
	if r.status != StatusActive {
		return
	}
	r.endGame()
}

func (r *Room) handleLineStart(c lineStartCmd) {
	sess := r.sessions[c.connID]
	if sess == nil {
		return
	}

	canonical := uuid.New().String()
	sess.localStrokes[c.line.ID] = canonical

	points := make([]protocol.Point, len(c.line.Points))
	copy(points, c.line.Points)
	r.strokes[canonical] = &Stroke{
		ID:     canonical,
		Points: points,
		Color:  c.line.Color,
		Width:  c.line.Width,
	}

	r.send.BroadcastExcept(c.identity, protocol.ServerMessage{
		Type: protocol.EvtLineStart,
		Line: &protocol.Line{ID: canonical, Points: points, Color: c.line.Color, Width: c.line.Width},
	})
	r.send.SendTo(c.identity, protocol.ServerMessage{
		Type:    protocol.EvtLineAck,
		LocalID: c.line.ID,
		LineID:  canonical,
	})
}

func (r *Room) handleLineUpdate(c lineUpdateCmd) {
	sess := r.sessions[c.connID]
	if sess == nil {
		return
	}
	canonical, ok := sess.localStrokes[c.localID]
	if !ok {
		return // stale after a clear; expected, not an error
	}
	stroke, ok := r.strokes[canonical]
	if !ok {
		return
	}
	stroke.Points = append(stroke.Points, c.points...)

	r.send.BroadcastExcept(c.identity, protocol.ServerMessage{
		Type:      protocol.EvtLineUpdate,
		LineID:    canonical,
		NewPoints: c.points,
	})
}

func (r *Room) handleLineEnd(c lineEndCmd) {
	sess := r.sessions[c.connID]
	if sess == nil {
		return
	}
	canonical, ok := sess.localStrokes[c.line.ID]
	if !ok {
		return
	}
	stroke, ok := r.strokes[canonical]
	if !ok {
		return
	}

	// The final point set from the sender is authoritative.
	points := make([]protocol.Point, len(c.line.Points))
	copy(points, c.line.Points)
	stroke.Points = points
	stroke.Color = c.line.Color
	stroke.Width = c.line.Width

	// Including the sender: the ack lets it prune its optimistic local copy.
	r.send.Broadcast(protocol.ServerMessage{
		Type: protocol.EvtLineEnd,
		Line: &protocol.Line{ID: canonical, Points: points, Color: stroke.Color, Width: stroke.Width},
	})
}

func (r *Room) handleClear(c clearCmd) {
	r.clearStrokes()
	r.send.BroadcastExcept(c.identity, protocol.ServerMessage{Type: protocol.EvtClearLines})
}

func (r *Room) clearStrokes() {
	r.strokes = make(map[string]*Stroke)
	for _, sess := range r.sessions {
		sess.localStrokes = make(map[string]string)
	}
}

func (r *Room) playerByName(name string) *Player {
	for _, p := range r.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// drawer resolves the current drawer, re-validating the stored index against
// the live player list (the index goes stale when players leave).
func (r *Room) drawer() *Player {
	if r.round == nil {
		return nil
	}
	return r.playerByName(r.round.DrawerName)
}

func (r *Room) playerInfos() []protocol.PlayerInfo {
	drawerName := ""
	if r.status == StatusActive && r.round != nil {
		drawerName = r.round.DrawerName
	}
	infos := make([]protocol.PlayerInfo, 0, len(r.players))
	for _, p := range r.players {
		infos = append(infos, protocol.PlayerInfo{
			Name:      p.Name,
			Points:    p.Points,
			Color:     p.Color,
			IsDrawing: p.Name == drawerName && drawerName != "",
		})
	}
	return infos
}

// standings returns players sorted by points descending, name ascending on
// ties, matching the persisted placement order.
func (r *Room) standings() []*Player {
	ranked := make([]*Player, len(r.players))
	copy(ranked, r.players)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Points != ranked[j].Points {
			return ranked[i].Points > ranked[j].Points
		}
		return ranked[i].Name < ranked[j].Name
	})
	return ranked
}
