package route

import (
	"sync"

	"HealthMate/internal/cli/session"
)

// StateSource is the part of session.Gate the guard needs.
type StateSource interface {
	State() session.State
	Subscribe(fn func(session.State)) func()
}

// Observer receives every decision taken by a Guard.
type Observer func(path string, d Decision)

// maxHops bounds redirect following; the default table needs at most one.
const maxHops = 3

// Guard tracks the current path and re-decides on navigation and on session change.
type Guard struct {
	table   *Table
	observe Observer
	unsub   func()

	mu    sync.Mutex
	state session.State
	path  string
}

// NewGuard subscribes to src. observe may be nil.
func NewGuard(src StateSource, table *Table, observe Observer) *Guard {
	if table == nil {
		table = DefaultTable()
	}
	if observe == nil {
		observe = func(string, Decision) {}
	}
	g := &Guard{table: table, observe: observe}
	g.mu.Lock()
	g.unsub = src.Subscribe(g.onState)
	g.state = src.State()
	g.mu.Unlock()
	return g
}

// Navigate decides for p and makes it the current path. On Redirect the
// current path becomes the redirect location. The decision for p is returned.
func (g *Guard) Navigate(p string) Decision {
	g.mu.Lock()
	g.path = normalize(p)
	trail := g.evalLocked()
	g.mu.Unlock()

	g.report(trail)
	return trail[0].d
}

// Current returns the current path and its decision for the latest state.
func (g *Guard) Current() (string, Decision) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.path, Decide(g.state, g.table.Classify(g.path))
}

// Close stops following session changes.
func (g *Guard) Close() {
	if g.unsub != nil {
		g.unsub()
	}
}

func (g *Guard) onState(st session.State) {
	g.mu.Lock()
	g.state = st
	if g.path == "" {
		g.mu.Unlock()
		return
	}
	trail := g.evalLocked()
	g.mu.Unlock()

	g.report(trail)
}

type step struct {
	path string
	d    Decision
}

func (g *Guard) evalLocked() []step {
	var trail []step
	for i := 0; i < maxHops; i++ {
		d := Decide(g.state, g.table.Classify(g.path))
		trail = append(trail, step{path: g.path, d: d})
		if d.Action != Redirect || d.Location == g.path {
			break
		}
		g.path = d.Location
	}
	return trail
}

func (g *Guard) report(trail []step) {
	for _, s := range trail {
		g.observe(s.path, s.d)
	}
}
