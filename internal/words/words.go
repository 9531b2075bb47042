package words

import (
	"errors"
	"math/rand"
	"sync"
)

var ErrNoWords = errors.New("no words available")

// Picker draws a random word, avoiding the excluded set when possible.
// If every word is excluded it falls back to an unconstrained draw.
type Picker interface {
	RandomWord(exclude map[string]bool) (string, error)
}

// MemoryPicker serves words from an in-memory list. It backs games when no
// database is configured, and tests.
type MemoryPicker struct {
	mu    sync.Mutex
	words []string
}

func NewMemoryPicker(list []string) *MemoryPicker {
	w := make([]string, len(list))
	copy(w, list)
	return &MemoryPicker{words: w}
}

// NewSeedPicker returns a MemoryPicker over the built-in seed list.
func NewSeedPicker() *MemoryPicker {
	return NewMemoryPicker(SeedWords)
}

func (p *MemoryPicker) RandomWord(exclude map[string]bool) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.words) == 0 {
		return "", ErrNoWords
	}

	candidates := make([]string, 0, len(p.words))
	for _, w := range p.words {
		if !exclude[w] {
			candidates = append(candidates, w)
		}
	}
	// All words used already: sample from the full list instead.
	if len(candidates) == 0 {
		candidates = p.words
	}
	return candidates[rand.Intn(len(candidates))], nil
}
