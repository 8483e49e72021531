package cli

import (
	"sync"

	"github.com/dmitrijs2005/shoplist/internal/client/screens"
)

// entry is one page of the navigation stack. screen is mounted lazily the
// first time the entry becomes current.
type entry struct {
	route   screens.Route
	params  screens.Params
	screen  any
	mounted bool
}

// Router is the navigation stack. It implements screens.Navigator.
type Router struct {
	mu    sync.Mutex
	stack []*entry
}

func NewRouter() *Router {
	return &Router{}
}

func (r *Router) Replace(route screens.Route, p screens.Params) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stack = []*entry{{route: route, params: p}}
}

func (r *Router) Push(route screens.Route, p screens.Params) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stack = append(r.stack, &entry{route: route, params: p})
}

// Back pops the current page. The root page stays.
func (r *Router) Back() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.stack) > 1 {
		r.stack = r.stack[:len(r.stack)-1]
	}
}

func (r *Router) current() *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// Route returns the current route, or "" before the first navigation.
func (r *Router) Route() screens.Route {
	if e := r.current(); e != nil {
		return e.route
	}
	return ""
}

// Depth is the number of pages on the stack.
func (r *Router) Depth() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stack)
}

// unmounted returns the current entry when it still needs a screen.
func (r *Router) unmounted() *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.stack) == 0 {
		return nil
	}
	e := r.stack[len(r.stack)-1]
	if e.mounted {
		return nil
	}
	e.mounted = true
	return e
}
