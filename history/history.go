package history

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/alphadose/haxmap"
	"github.com/casualjim/strix/messages"
	"github.com/casualjim/strix/pkg/uuidx"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ErrEmptyInput is returned when a user turn is appended with text that trims
// to the empty string.
var ErrEmptyInput = errors.New("prompt text cannot be empty")

// Listener observes history mutations. Implementations must tolerate
// notifications carrying no net visible change and must not mutate the
// snapshot they receive.
type Listener interface {
	HistoryChanged(turns []Turn)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(turns []Turn)

// HistoryChanged calls the wrapped function.
func (f ListenerFunc) HistoryChanged(turns []Turn) { f(turns) }

// Log is the ordered conversation log for one adapter instance. Insertion
// order is conversation order. The zero value is not usable; construct with
// New.
type Log struct {
	mu        sync.Mutex
	turns     []Turn
	listeners *haxmap.Map[string, Listener]
}

// New creates an empty conversation log.
func New() *Log {
	return &Log{
		listeners: haxmap.New[string, Listener](),
	}
}

// Len returns the number of turns in the log.
func (h *Log) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}

// Turns returns a copy of the log in conversation order.
func (h *Log) Turns() []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.turns)
}

// AppendUser appends a finalized user turn. It rejects text that trims to
// empty with ErrEmptyInput. When the immediately preceding turn is a
// finalized user turn with identical text the append is a no-op and the
// existing turn is returned; this guards against a caller re-invoking send
// for the same logical action.
func (h *Log) AppendUser(text string, attachments ...messages.Attachment) (Turn, error) {
	if strings.TrimSpace(text) == "" {
		return Turn{}, ErrEmptyInput
	}

	h.mu.Lock()
	if last, ok := h.last(); ok && last.Role == messages.RoleUser && last.Finalized && last.Text == text {
		turn := *last
		h.mu.Unlock()
		return turn, nil
	}

	h.finalizeOpenLocked()
	turn := newTurn(messages.RoleUser, text, attachments, true)
	h.turns = append(h.turns, turn)
	snapshot := slices.Clone(h.turns)
	h.mu.Unlock()

	h.notify(snapshot)
	return turn, nil
}

// AppendAssistantPlaceholder appends an empty, unfinalized assistant turn to
// be filled incrementally by the active stream. Any previously open turn is
// finalized first so that at most one unfinalized turn exists.
func (h *Log) AppendAssistantPlaceholder() Turn {
	h.mu.Lock()
	h.finalizeOpenLocked()
	turn := newTurn(messages.RoleAssistant, "", nil, false)
	h.turns = append(h.turns, turn)
	snapshot := slices.Clone(h.turns)
	h.mu.Unlock()

	h.notify(snapshot)
	return turn
}

// ApplyDelta appends text to the most recent unfinalized assistant turn. It
// is a no-op when no turn is open. Listeners observe the change before
// ApplyDelta returns.
func (h *Log) ApplyDelta(text string) {
	if text == "" {
		return
	}

	h.mu.Lock()
	open := h.openAssistantLocked()
	if open == nil {
		h.mu.Unlock()
		return
	}
	open.Text += text
	snapshot := slices.Clone(h.turns)
	h.mu.Unlock()

	h.notify(snapshot)
}

// ApplyError appends a formatted error suffix to the most recent unfinalized
// assistant turn and finalizes it. It is a no-op when no turn is open.
func (h *Log) ApplyError(message string) {
	h.mu.Lock()
	open := h.openAssistantLocked()
	if open == nil {
		h.mu.Unlock()
		return
	}
	if open.Text != "" {
		open.Text += "\n\n"
	}
	open.Text += fmt.Sprintf("[Error: %s]", message)
	open.Finalized = true
	snapshot := slices.Clone(h.turns)
	h.mu.Unlock()

	h.notify(snapshot)
}

// Finalize closes the most recent unfinalized assistant turn, marking the
// stream as complete. It is a no-op when no turn is open.
func (h *Log) Finalize() {
	h.mu.Lock()
	open := h.openAssistantLocked()
	if open == nil {
		h.mu.Unlock()
		return
	}
	open.Finalized = true
	snapshot := slices.Clone(h.turns)
	h.mu.Unlock()

	h.notify(snapshot)
}

// Clear removes every turn, triggering a single change notification.
func (h *Log) Clear() {
	h.mu.Lock()
	h.turns = nil
	snapshot := []Turn{}
	h.mu.Unlock()

	h.notify(snapshot)
}

// Replace swaps the entire log content, triggering a single change
// notification.
func (h *Log) Replace(turns []Turn) {
	h.mu.Lock()
	h.turns = slices.Clone(turns)
	snapshot := slices.Clone(h.turns)
	h.mu.Unlock()

	h.notify(snapshot)
}

// WireMessages exports the log in the shape the remote protocol accepts. It
// walks the turns in order, skipping turns whose text trims to empty,
// skipping any (role, text) pair already exported, and skipping a turn whose
// role equals the immediately preceding exported role. The result strictly
// alternates roles.
func (h *Log) WireMessages() []messages.WireMessage {
	h.mu.Lock()
	turns := slices.Clone(h.turns)
	h.mu.Unlock()

	seen := orderedmap.New[string, struct{}]()
	out := make([]messages.WireMessage, 0, len(turns))
	var lastRole messages.Role

	for _, turn := range turns {
		if strings.TrimSpace(turn.Text) == "" {
			continue
		}
		key := string(turn.Role) + "\x00" + turn.Text
		if _, dup := seen.Get(key); dup {
			continue
		}
		if turn.Role == lastRole {
			continue
		}
		seen.Set(key, struct{}{})
		out = append(out, messages.WireMessage{Role: turn.Role, Content: turn.Text})
		lastRole = turn.Role
	}
	return out
}

// Subscription represents an active listener registration.
type Subscription struct {
	id        string
	closeOnce sync.Once
	onClose   func()
}

// ID returns the registration identifier.
func (s *Subscription) ID() string { return s.id }

// Unsubscribe removes the listener. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.closeOnce.Do(func() {
		if s.onClose != nil {
			s.onClose()
		}
	})
}

// Subscribe registers a listener for mutation notifications. The listener is
// immediately invoked with the current snapshot so observers start from a
// consistent view.
func (h *Log) Subscribe(l Listener) *Subscription {
	id := uuidx.NewString()
	h.listeners.Set(id, l)

	sub := &Subscription{
		id:      id,
		onClose: func() { h.listeners.Del(id) },
	}

	l.HistoryChanged(h.Turns())
	return sub
}

func (h *Log) notify(snapshot []Turn) {
	h.listeners.ForEach(func(_ string, l Listener) bool {
		l.HistoryChanged(slices.Clone(snapshot))
		return true
	})
}

// last returns a pointer to the final turn. Callers must hold h.mu.
func (h *Log) last() (*Turn, bool) {
	if len(h.turns) == 0 {
		return nil, false
	}
	return &h.turns[len(h.turns)-1], true
}

// openAssistantLocked returns the streaming turn, or nil when none is open.
// Callers must hold h.mu.
func (h *Log) openAssistantLocked() *Turn {
	last, ok := h.last()
	if !ok || last.Role != messages.RoleAssistant || last.Finalized {
		return nil
	}
	return last
}

// finalizeOpenLocked closes out a still-open turn before a new one is
// appended. Callers must hold h.mu.
func (h *Log) finalizeOpenLocked() {
	if open := h.openAssistantLocked(); open != nil {
		open.Finalized = true
	}
}
