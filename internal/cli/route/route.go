// Package route decides whether a navigable path may be shown for the current session.
package route

import (
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"HealthMate/internal/cli/session"
)

// Entry points used for redirects.
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Class is the access class of a path.
type Class int

const (
	// Public paths are always rendered.
	Public Class = iota
	// Protected paths need an identity.
	Protected
	// Restricted paths are only for signed-out users (login, register...).
	Restricted
)

func (c Class) String() string {
	switch c {
	case Protected:
		return "protected"
	case Restricted:
		return "restricted"
	}
	return "public"
}

// Action is what the caller should do with a path.
type Action int

const (
	Render Action = iota
	Wait
	Redirect
)

func (a Action) String() string {
	switch a {
	case Wait:
		return "wait"
	case Redirect:
		return "redirect"
	}
	return "render"
}

// Decision is the outcome of Decide. Location is set only for Redirect.
type Decision struct {
	Action   Action
	Location string
}

// Decide is the access rule. While the session is loading nothing but the
// waiting indicator may be shown, whatever the class.
func Decide(st session.State, c Class) Decision {
	switch st.Status {
	case session.Loading:
		return Decision{Action: Wait}
	case session.Authenticated:
		if c == Restricted {
			return Decision{Action: Redirect, Location: HomePath}
		}
	default:
		if c == Protected {
			return Decision{Action: Redirect, Location: LoginPath}
		}
	}
	return Decision{Action: Render}
}

// Protected and restricted routes of the client. Anything else is public.
var (
	DefaultProtected  = []string{"/dashboard", "/upload", "/reports/{id}", "/timeline", "/vitals", "/profile"}
	DefaultRestricted = []string{"/register", "/login", "/otp", "/forget-password", "/resetpassword/{token}"}
)

// Table classifies paths using chi route patterns.
type Table struct {
	protected  *chi.Mux
	restricted *chi.Mux
}

// NewTable builds a table from chi patterns such as "/reports/{id}".
func NewTable(protected, restricted []string) *Table {
	return &Table{protected: newMux(protected), restricted: newMux(restricted)}
}

// DefaultTable returns the client's route table.
func DefaultTable() *Table {
	return NewTable(DefaultProtected, DefaultRestricted)
}

func newMux(patterns []string) *chi.Mux {
	mx := chi.NewRouter()
	noop := func(http.ResponseWriter, *http.Request) {}
	for _, p := range patterns {
		mx.Get(p, noop)
	}
	return mx
}

// Classify returns the class of p. Query strings and trailing slashes are ignored.
func (t *Table) Classify(p string) Class {
	p = normalize(p)
	switch {
	case t.protected.Match(chi.NewRouteContext(), http.MethodGet, p):
		return Protected
	case t.restricted.Match(chi.NewRouteContext(), http.MethodGet, p):
		return Restricted
	}
	return Public
}

func normalize(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
