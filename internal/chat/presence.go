package chat

import (
	"sync"
	"time"

	"github.com/diogo/pulsechat/internal/models"
)

// TypingState describes the visible typing indicator.
type TypingState struct {
	ConversationID string
	Name           string
	Avatar         models.Avatar
}

// Presence tracks the transient "is typing" indicator. It is never persisted
// and never part of a conversation history.
type Presence struct {
	mu       sync.Mutex
	state    *TypingState
	gen      uint64
	timer    *time.Timer
	onChange func(state TypingState, typing bool)
}

// NewPresence creates a simulator. onChange, if set, is called after every
// visible change, outside the simulator's lock.
func NewPresence(onChange func(state TypingState, typing bool)) *Presence {
	return &Presence{onChange: onChange}
}

// Start shows the indicator for conv until Stop. It replaces any indicator
// already shown and cancels its pending auto-stop.
func (p *Presence) Start(conv *models.Conversation) uint64 {
	return p.start(conv, 0)
}

// StartFor shows the indicator for conv and hides it after d, unless a later
// Start or StartFor has replaced it by then.
func (p *Presence) StartFor(conv *models.Conversation, d time.Duration) uint64 {
	return p.start(conv, d)
}

func (p *Presence) start(conv *models.Conversation, d time.Duration) uint64 {
	state := TypingState{ConversationID: conv.ID, Name: conv.Name, Avatar: conv.Avatar}

	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.state = &state
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if d > 0 {
		p.timer = time.AfterFunc(d, func() { p.stopGen(gen) })
	}
	p.mu.Unlock()

	p.notify(state, true)
	return gen
}

// Stop hides the indicator. Safe to call when nothing is shown.
func (p *Presence) Stop() {
	p.mu.Lock()
	state, changed := p.clearLocked()
	p.mu.Unlock()

	if changed {
		p.notify(state, false)
	}
}

// StopFor hides the indicator only if it is shown for conversation id.
func (p *Presence) StopFor(id string) {
	p.mu.Lock()
	if p.state == nil || p.state.ConversationID != id {
		p.mu.Unlock()
		return
	}
	state, changed := p.clearLocked()
	p.mu.Unlock()

	if changed {
		p.notify(state, false)
	}
}

func (p *Presence) stopGen(gen uint64) {
	p.mu.Lock()
	if p.gen != gen {
		p.mu.Unlock()
		return
	}
	state, changed := p.clearLocked()
	p.mu.Unlock()

	if changed {
		p.notify(state, false)
	}
}

func (p *Presence) clearLocked() (TypingState, bool) {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.state == nil {
		return TypingState{}, false
	}
	state := *p.state
	p.state = nil
	return state, true
}

// Current returns the indicator state, if one is shown.
func (p *Presence) Current() (TypingState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == nil {
		return TypingState{}, false
	}
	return *p.state, true
}

func (p *Presence) notify(state TypingState, typing bool) {
	if p.onChange != nil {
		p.onChange(state, typing)
	}
}
