// Package host runs an engine inside a long-lived process: a locked handle
// shared by the tick loop and the HTTP handlers, a fan-out of emergent
// events to stream subscribers, and the wall-clock loop itself.
package host

import (
	"log/slog"
	"sync"

	"github.com/talgya/hearsay/internal/engine"
)

// World guards one engine. Every access goes through Read or Write.
type World struct {
	mu  sync.Mutex
	eng *engine.Engine

	subMu  sync.Mutex
	nextID int
	subs   map[int]chan engine.EmergentEvent
}

// NewWorld wraps an engine.
func NewWorld(eng *engine.Engine) *World {
	return &World{eng: eng, subs: make(map[int]chan engine.EmergentEvent)}
}

// Read runs fn with the engine locked. fn must not keep references to engine
// state past its return.
func (w *World) Read(fn func(*engine.Engine)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(w.eng)
}

// Write runs fn with the engine locked.
func (w *World) Write(fn func(*engine.Engine)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(w.eng)
}

// Replace swaps in a different engine, e.g. one restored from a snapshot.
func (w *World) Replace(eng *engine.Engine) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.eng = eng
}

// Advance moves the world forward by dt and publishes the emergent events
// it raised.
func (w *World) Advance(dt float64) []engine.EmergentEvent {
	w.mu.Lock()
	raised := w.eng.Update(dt)
	w.mu.Unlock()
	w.publish(raised)
	return raised
}

// Snapshot captures the world under the lock.
func (w *World) Snapshot() *engine.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.eng.Snapshot()
}

// Subscribe returns a channel receiving every emergent event published from
// now on, and a function that cancels the subscription. A subscriber that
// falls more than buf events behind misses events rather than blocking the
// world.
func (w *World) Subscribe(buf int) (<-chan engine.EmergentEvent, func()) {
	if buf < 1 {
		buf = 1
	}
	ch := make(chan engine.EmergentEvent, buf)

	w.subMu.Lock()
	id := w.nextID
	w.nextID++
	w.subs[id] = ch
	w.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			w.subMu.Lock()
			delete(w.subs, id)
			w.subMu.Unlock()
			close(ch)
		})
	}
}

func (w *World) publish(raised []engine.EmergentEvent) {
	if len(raised) == 0 {
		return
	}
	w.subMu.Lock()
	defer w.subMu.Unlock()
	for _, ev := range raised {
		for id, ch := range w.subs {
			select {
			case ch <- ev:
			default:
				slog.Debug("stream subscriber lagging, event dropped", "subscriber", id, "kind", ev.Kind)
			}
		}
	}
}
