// Package module provides prefix-scoped HTTP routing: each mounted module owns
// a single-level path prefix and an independent middleware stack.
package module

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/stonebriar/sagerelay/pkg/middleware"
)

// Module scopes an inner router to a path prefix. Requests dispatched through
// Serve reach the router with the prefix already stripped.
type Module struct {
	prefix string
	router http.Handler
	stack  *middleware.Stack
}

// New creates a Module mounted at prefix. The prefix must be a single path
// segment with a leading slash, e.g. "/events"; anything else panics, since a
// bad prefix is a wiring error caught at startup.
func New(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix: prefix,
		router: router,
		stack:  middleware.New(),
	}
}

// Handler returns the inner router wrapped in the module's middleware.
func (m *Module) Handler() http.Handler {
	return m.stack.Apply(m.router)
}

// Prefix returns the module's mount point.
func (m *Module) Prefix() string {
	return m.prefix
}

// Serve rewrites the request path relative to the module prefix and hands the
// request to the wrapped router.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	scoped := new(http.Request)
	*scoped = *req
	scoped.URL = new(url.URL)
	*scoped.URL = *req.URL
	scoped.URL.Path = innerPath(req.URL.Path, m.prefix)
	scoped.URL.RawPath = ""

	m.Handler().ServeHTTP(w, scoped)
}

// Use adds middleware to the module's stack.
func (m *Module) Use(mw middleware.Middleware) {
	m.stack.Use(mw)
}

func innerPath(full, prefix string) string {
	if path := full[len(prefix):]; path != "" {
		return path
	}
	return "/"
}

func validatePrefix(prefix string) error {
	if prefix == "" {
		return fmt.Errorf("module prefix cannot be empty")
	}
	if !strings.HasPrefix(prefix, "/") {
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	}
	if strings.Count(prefix, "/") != 1 {
		return fmt.Errorf("module prefix must be a single-level sub-path: %s", prefix)
	}
	return nil
}
