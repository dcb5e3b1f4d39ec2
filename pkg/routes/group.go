package routes

import "net/http"

// Group nests routes under a shared path prefix. Child groups inherit the
// concatenated prefix of their ancestors.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register mounts every route reachable from the given groups on mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		g.mount(mux, "")
	}
}

func (g Group) mount(mux *http.ServeMux, parent string) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		mux.HandleFunc(r.Method+" "+prefix+r.Pattern, r.Handler)
	}
	for _, child := range g.Children {
		child.mount(mux, prefix)
	}
}
