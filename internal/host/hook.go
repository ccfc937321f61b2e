// Package host is the boundary between the chat log and the extensions that
// patch it: named hooks, and the panel surface extensions may query.
package host

// HandlerID identifies a registration on a Hook.
type HandlerID int

type handler[T any] struct {
	id   HandlerID
	fn   func(T)
	once bool
}

// Hook is a named, synchronous event. Handlers run in registration order on
// the caller's goroutine; the chat log only calls hooks from its Update loop.
type Hook[T any] struct {
	name     string
	next     HandlerID
	handlers []handler[T]
}

// NewHook returns an empty hook.
func NewHook[T any](name string) *Hook[T] {
	return &Hook[T]{name: name}
}

// Name returns the hook's name.
func (h *Hook[T]) Name() string {
	return h.name
}

// On registers fn for every call.
func (h *Hook[T]) On(fn func(T)) HandlerID {
	return h.add(fn, false)
}

// Once registers fn for the next call only.
func (h *Hook[T]) Once(fn func(T)) HandlerID {
	return h.add(fn, true)
}

func (h *Hook[T]) add(fn func(T), once bool) HandlerID {
	h.next++
	h.handlers = append(h.handlers, handler[T]{id: h.next, fn: fn, once: once})
	return h.next
}

// Off removes a registration. It reports whether id was registered.
func (h *Hook[T]) Off(id HandlerID) bool {
	for i, hd := range h.handlers {
		if hd.id == id {
			h.handlers = append(h.handlers[:i], h.handlers[i+1:]...)
			return true
		}
	}
	return false
}

// Call runs every handler with v and returns how many ran. Once handlers are
// removed before they run, so a handler that calls back into the hook does not
// see itself again.
func (h *Hook[T]) Call(v T) int {
	run := make([]handler[T], len(h.handlers))
	copy(run, h.handlers)

	kept := h.handlers[:0]
	for _, hd := range h.handlers {
		if !hd.once {
			kept = append(kept, hd)
		}
	}
	h.handlers = kept

	for _, hd := range run {
		hd.fn(v)
	}
	return len(run)
}

// Len returns the number of registered handlers.
func (h *Hook[T]) Len() int {
	return len(h.handlers)
}
