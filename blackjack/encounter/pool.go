package encounter

import (
	"fmt"
	"math/rand"
	"sort"
)

// Pool is a weighted bag of encounters. Draws are by weight; the
// draw-different variant retries a bounded number of times so unlucky
// streaks cannot spin forever.
type Pool struct {
	entries map[string]*poolEntry
	keys    []string // sorted for deterministic iteration
}

type poolEntry struct {
	enc    *Encounter
	weight int
}

func NewPool() *Pool {
	return &Pool{entries: map[string]*poolEntry{}}
}

// Add registers an encounter with a positive weight.
func (p *Pool) Add(enc *Encounter, weight int) error {
	if enc == nil || enc.Key == "" {
		return fmt.Errorf("encounter with empty key")
	}
	if weight <= 0 {
		return fmt.Errorf("encounter %q: weight must be > 0", enc.Key)
	}
	if _, dup := p.entries[enc.Key]; dup {
		return fmt.Errorf("duplicate encounter %q", enc.Key)
	}
	p.entries[enc.Key] = &poolEntry{enc: enc, weight: weight}
	p.keys = append(p.keys, enc.Key)
	sort.Strings(p.keys)
	return nil
}

func (p *Pool) Len() int {
	return len(p.entries)
}

// Get returns a registered encounter by key.
func (p *Pool) Get(key string) (*Encounter, bool) {
	entry, ok := p.entries[key]
	if !ok {
		return nil, false
	}
	return entry.enc, true
}

func (p *Pool) Keys() []string {
	return p.keys
}

// Draw picks an encounter proportionally to weight. Each draw returns a
// fresh copy so selection state never leaks between visits.
func (p *Pool) Draw(rng *rand.Rand) (*Encounter, bool) {
	if len(p.keys) == 0 {
		return nil, false
	}
	total := 0
	for _, key := range p.keys {
		total += p.entries[key].weight
	}
	roll := rng.Intn(total)
	for _, key := range p.keys {
		roll -= p.entries[key].weight
		if roll < 0 {
			return p.entries[key].enc.clone(), true
		}
	}
	return p.entries[p.keys[len(p.keys)-1]].enc.clone(), true
}

// DrawDifferent draws an encounter whose key differs from exclude,
// retrying up to ten times before settling for whatever came last.
func (p *Pool) DrawDifferent(rng *rand.Rand, exclude string) (*Encounter, bool) {
	var last *Encounter
	for i := 0; i < 10; i++ {
		enc, ok := p.Draw(rng)
		if !ok {
			return nil, false
		}
		if enc.Key != exclude {
			return enc, true
		}
		last = enc
	}
	return last, last != nil
}

func (e *Encounter) clone() *Encounter {
	out := *e
	out.Choices = make([]Choice, len(e.Choices))
	copy(out.Choices, e.Choices)
	out.Selected = -1
	return &out
}
