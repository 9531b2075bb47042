package game

import (
	"math"
	"strings"
	"time"

	"sketchparty/internal/metrics"
	"sketchparty/internal/protocol"
)

// MaskWord replaces every non-space rune with an underscore, preserving
// length and spaces, e.g. "ice cream" -> "___ _____".
func MaskWord(word string) string {
	var b strings.Builder
	for _, r := range word {
		if r == ' ' {
			b.WriteRune(' ')
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// GuesserScore is the time-decayed award for a correct guess: one point per
// 100ms left on the clock, never negative.
func GuesserScore(remaining time.Duration) int {
	if remaining <= 0 {
		return 0
	}
	return int(math.Round(float64(remaining.Milliseconds()) / 100))
}

// DrawerScore is the drawer's award at turn end: one point per 200ms left at
// cutoff (zero when the clock ran out) plus a flat 25 per correct guesser.
func DrawerScore(remaining time.Duration, correctGuessers int) int {
	base := 0
	if remaining > 0 {
		base = int(math.Round(float64(remaining.Milliseconds()) / 200))
	}
	return base + 25*correctGuessers
}

func (r *Room) correctGuessCount() int {
	if r.round == nil {
		return 0
	}
	n := 0
	for _, active := range r.round.ActiveGuessers {
		if !active {
			n++
		}
	}
	return n
}

// allGuessed reports whether every remaining guesser has found the word. An
// empty guesser map never counts as "everyone guessed".
func (r *Room) allGuessed() bool {
	if r.round == nil || len(r.round.ActiveGuessers) == 0 {
		return false
	}
	for _, active := range r.round.ActiveGuessers {
		if active {
			return false
		}
	}
	return true
}

func (r *Room) handleChat(c chatCmd) {
	isActiveGuesser := r.status == StatusActive && r.round != nil && r.round.ActiveGuessers[c.identity]

	if isActiveGuesser && c.text == r.round.Word {
		// Exact match before the countdown started: not evaluated, and not
		// leaked to anyone either.
		if r.phase != phaseCountdown || r.round.EndTime.IsZero() {
			return
		}
		r.handleCorrectGuess(c.identity)
		return
	}

	// A message from the drawer or an already-correct guesser is public; a
	// live guesser's (wrong) guess is only shown to players who can no
	// longer be spoiled by it.
	msg := protocol.ServerMessage{
		Type:     protocol.EvtReceiveMessage,
		User:     c.identity,
		Message:  c.text,
		IsPublic: !isActiveGuesser,
		MsgType:  protocol.MsgTypeChat,
	}
	if msg.IsPublic {
		r.send.BroadcastExcept(c.identity, msg)
		return
	}
	r.send.SendSubset(r.safeRecipients(c.identity), msg)
}

// safeRecipients lists everyone who already knows the word: the drawer and
// players whose activeGuessers entry has flipped to false. The sender is
// excluded; its client renders its own messages locally.
func (r *Room) safeRecipients(sender string) []string {
	recipients := make([]string, 0, len(r.players))
	for _, p := range r.players {
		if p.Name == sender {
			continue
		}
		if !r.round.ActiveGuessers[p.Name] {
			recipients = append(recipients, p.Name)
		}
	}
	return recipients
}

func (r *Room) handleCorrectGuess(identity string) {
	r.round.ActiveGuessers[identity] = false

	remaining := r.round.EndTime.Sub(r.clock.Now())
	score := GuesserScore(remaining)
	if p := r.playerByName(identity); p != nil {
		p.Points += score
	}
	metrics.CorrectGuesses.Inc()
	if r.onGuess != nil {
		r.onGuess(GuessEvent{
			GameID:    r.id,
			Player:    identity,
			Word:      r.round.Word,
			Points:    score,
			Remaining: remaining,
			GuessedAt: r.clock.Now(),
		})
	}

	guessers := make(map[string]bool, len(r.round.ActiveGuessers))
	for name, active := range r.round.ActiveGuessers {
		guessers[name] = active
	}
	r.send.Broadcast(protocol.ServerMessage{
		Type:           protocol.EvtCorrectGuess,
		MsgType:        protocol.MsgTypeCorrectGuess,
		User:           identity,
		CurrWord:       r.round.Word,
		PointChange:    score,
		Players:        r.playerInfos(),
		ActiveGuessers: guessers,
	})

	// The server ends the turn itself when the last guesser lands, rather
	// than waiting for that client to ask.
	if r.allGuessed() {
		r.endTurn()
	}
}
