package game

import (
	"log"
	"time"

	"sketchparty/internal/metrics"
	"sketchparty/internal/protocol"
)

func (r *Room) handleStartGame(c startGameCmd) {
	if r.status != StatusNotStarted {
		r.send.SendTo(c.identity, protocol.ServerMessage{
			Type:  protocol.EvtErrorMessage,
			Error: "game already started",
		})
		return
	}
	if len(r.players) < 2 {
		r.send.SendTo(c.identity, protocol.ServerMessage{
			Type:  protocol.EvtErrorMessage,
			Error: "need at least 2 players to start",
		})
		return
	}

	// Both collaborator calls happen before any local mutation: if either
	// fails the room is left exactly as it was, still startable.
	word, ok := r.pickWord()
	if !ok {
		return
	}
	if err := r.store.SetGameStatus(r.id, StatusActive); err != nil {
		log.Printf("[Game] %s: set status active: %v\n", r.id, err)
		r.send.SendTo(c.identity, protocol.ServerMessage{
			Type:  protocol.EvtErrorMessage,
			Error: "could not start game, try again",
		})
		return
	}

	r.status = StatusActive
	r.installTurn(1, 0, word)
}

func (r *Room) pickWord() (string, bool) {
	word, err := r.words.RandomWord(r.usedWords)
	if err != nil {
		log.Printf("[Game] %s: word selection: %v\n", r.id, err)
		r.send.Broadcast(protocol.ServerMessage{
			Type:  protocol.EvtErrorMessage,
			Error: "word selection unavailable",
		})
		return "", false
	}
	return word, true
}

// installTurn installs a fresh round for players[drawerIndex] and schedules
// the pre-roll.
func (r *Room) installTurn(roundNum, drawerIndex int, word string) {
	r.usedWords[word] = true

	drawerName := r.players[drawerIndex].Name
	guessers := make(map[string]bool, len(r.players)-1)
	for _, p := range r.players {
		if p.Name != drawerName {
			guessers[p.Name] = true
		}
	}

	r.clearStrokes()
	r.round = &Round{
		RoundNum:       roundNum,
		DrawerIndex:    drawerIndex,
		DrawerName:     drawerName,
		Word:           word,
		ActiveGuessers: guessers,
	}
	r.phase = phasePreroll

	r.send.Broadcast(protocol.ServerMessage{
		Type:       protocol.EvtRevealDrawer,
		RoundNum:   roundNum,
		CurrDrawer: drawerName,
		MaskedWord: MaskWord(word),
		Players:    r.playerInfos(),
	})
	r.send.SendTo(drawerName, protocol.ServerMessage{
		Type: protocol.EvtRevealWordPrivate,
		Word: word,
	})

	// Fixed delay so clients can show the "whose turn" overlay before the
	// countdown becomes visible.
	key := turnKey{roundNum: roundNum, drawerIndex: drawerIndex}
	r.sched.AfterFunc(r.cfg.PrerollDelay, func() {
		r.post(timerCmd{kind: timerPreroll, key: key})
	})
}

func (r *Room) handleTimer(c timerCmd) {
	// A timer only acts if the round it was scheduled for is still the live
	// one in the expected phase; anything else was superseded by end_game,
	// a population-drop game end, or an earlier turn transition.
	if r.status != StatusActive || r.round == nil {
		return
	}
	key := turnKey{roundNum: r.round.RoundNum, drawerIndex: r.round.DrawerIndex}
	if key != c.key {
		return
	}

	switch c.kind {
	case timerPreroll:
		if r.phase != phasePreroll {
			return
		}
		r.startCountdown()
	case timerTurnEnd:
		if r.phase != phaseCountdown {
			return
		}
		r.endTurn()
	case timerNextTurn:
		if r.phase != phaseSummary {
			return
		}
		r.advance()
	}
}

func (r *Room) startCountdown() {
	endTime := r.clock.Now().Add(r.cfg.TurnDuration)
	r.round.EndTime = endTime
	r.phase = phaseCountdown

	r.send.Broadcast(protocol.ServerMessage{
		Type:    protocol.EvtStartTurn,
		EndTime: endTime.UnixMilli(),
	})

	// The server owns the clock: the turn ends at endTime plus a short grace
	// even if no client ever asks for it. A drawer-sent end_turn or the last
	// correct guess just gets there earlier.
	key := turnKey{roundNum: r.round.RoundNum, drawerIndex: r.round.DrawerIndex}
	r.sched.AfterFunc(r.cfg.TurnDuration+r.cfg.TurnGrace, func() {
		r.post(timerCmd{kind: timerTurnEnd, key: key})
	})
}

func (r *Room) handleEndTurn(c endTurnCmd) {
	if r.status != StatusActive || r.round == nil || r.phase != phaseCountdown {
		return
	}
	// Only the drawer's client is trusted to call time; anyone may trigger
	// the early end once every guesser is done.
	if c.identity != r.round.DrawerName && !r.allGuessed() {
		return
	}
	r.endTurn()
}

// endTurn grades the current turn exactly once and schedules the rotation.
func (r *Room) endTurn() {
	if r.status != StatusActive || r.round == nil || r.phase != phaseCountdown {
		return
	}
	r.phase = phaseSummary

	r.clearStrokes()
	r.send.Broadcast(protocol.ServerMessage{Type: protocol.EvtClearLines})

	var remaining time.Duration
	if !r.round.EndTime.IsZero() {
		remaining = r.round.EndTime.Sub(r.clock.Now())
	}
	correct := r.correctGuessCount()
	score := DrawerScore(remaining, correct)
	if d := r.drawer(); d != nil {
		d.Points += score
	}

	r.send.Broadcast(protocol.ServerMessage{
		Type:        protocol.EvtRevealUpdatedPoints,
		Players:     r.playerInfos(),
		Word:        r.round.Word,
		DrawerScore: score,
	})

	key := turnKey{roundNum: r.round.RoundNum, drawerIndex: r.round.DrawerIndex}
	r.sched.AfterFunc(r.cfg.PrerollDelay, func() {
		r.post(timerCmd{kind: timerNextTurn, key: key})
	})
}

// advance rotates the drawer, bumping the round number on wrap-around, and
// either begins the next turn or finishes the game after the last round.
func (r *Room) advance() {
	if len(r.players) < 2 {
		r.endGame()
		return
	}

	nextIndex := (r.round.DrawerIndex + 1) % len(r.players)
	nextRoundNum := r.round.RoundNum
	if nextIndex == 0 {
		nextRoundNum++
	}

	if nextRoundNum > r.cfg.RoundCount {
		r.endGame()
		return
	}
	// On word-selection failure the old round stays installed in summary
	// phase; the transition aborts without half-advancing state, and an
	// explicit end_game still works.
	word, ok := r.pickWord()
	if !ok {
		return
	}
	r.installTurn(nextRoundNum, nextIndex, word)
}

// endGame runs the terminal transition: final standings out to the room, the
// result to the persistence collaborator, then the registry drops the room.
func (r *Room) endGame() {
	if r.status == StatusEnded {
		return
	}
	r.status = StatusEnded
	r.phase = phaseIdle

	ranked := r.standings()
	winner := ""
	if len(ranked) > 0 {
		winner = ranked[0].Name
	}
	numRounds := 0
	if r.round != nil {
		numRounds = r.round.RoundNum
	}

	infos := make([]protocol.PlayerInfo, 0, len(ranked))
	placements := make([]Placement, 0, len(ranked))
	for i, p := range ranked {
		infos = append(infos, protocol.PlayerInfo{Name: p.Name, Points: p.Points, Color: p.Color})
		placements = append(placements, Placement{Name: p.Name, Points: p.Points, Placement: i + 1})
	}

	r.send.Broadcast(protocol.ServerMessage{
		Type:    protocol.EvtGameEnded,
		Players: infos,
		Winner:  winner,
	})

	if err := r.store.RecordResult(Result{
		GameID:    r.id,
		NumRounds: numRounds,
		Winner:    winner,
		Players:   placements,
	}); err != nil {
		log.Printf("[Game] %s: record result: %v\n", r.id, err)
	}

	metrics.GamesCompleted.Inc()
	if r.onClose != nil {
		r.onClose(r.id)
	}
	r.Close()
}
