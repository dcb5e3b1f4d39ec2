// Package middleware provides the ordered HTTP middleware chain used by the
// relay's event intake module.
package middleware

import "net/http"

// Middleware wraps an http.Handler with cross-cutting behavior.
type Middleware func(http.Handler) http.Handler

// Stack is an ordered middleware chain. Middleware added first runs
// outermost, so Recovery registered before Logger observes logger panics.
type Stack struct {
	chain []Middleware
}

// New creates an empty Stack.
func New() *Stack {
	return &Stack{}
}

// Use appends mw to the chain.
func (s *Stack) Use(mw Middleware) {
	s.chain = append(s.chain, mw)
}

// Apply wraps handler in the chain, preserving registration order from the
// outside in.
func (s *Stack) Apply(handler http.Handler) http.Handler {
	wrapped := handler
	for i := len(s.chain) - 1; i >= 0; i-- {
		wrapped = s.chain[i](wrapped)
	}
	return wrapped
}
