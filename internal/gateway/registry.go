package gateway

import "sort"

// Registry maps collaborator names to base URLs. It is built once at
// startup and never mutated.
type Registry struct {
	urls  map[string]string
	names []string
}

// NewRegistry copies urls. names fixes the display order; names missing
// from urls are dropped and unlisted urls are appended in sorted order.
func NewRegistry(urls map[string]string, names []string) *Registry {
	r := &Registry{urls: make(map[string]string, len(urls))}

	for name, url := range urls {
		r.urls[name] = url
	}

	seen := make(map[string]bool, len(urls))
	for _, name := range names {
		if _, ok := r.urls[name]; ok && !seen[name] {
			r.names = append(r.names, name)
			seen[name] = true
		}
	}

	var rest []string
	for name := range r.urls {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	r.names = append(r.names, rest...)

	return r
}

func (r *Registry) URL(name string) (string, bool) {
	url, ok := r.urls[name]
	return url, ok
}

// Names returns the collaborator names in display order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Targets returns a copy of the name -> base URL map.
func (r *Registry) Targets() map[string]string {
	out := make(map[string]string, len(r.urls))
	for name, url := range r.urls {
		out[name] = url
	}
	return out
}
