// Package session holds per-user dashboard state: view toggles, page
// selections and the store that maps session IDs to them.
package session

import "sort"

// Toggles is a set of named boolean view flags. A flag starts false and
// changes only through Toggle. Flags are independent of each other.
//
// Toggles is not safe for concurrent use; the Store serializes access per
// session.
type Toggles struct {
	flags map[string]bool
}

// NewToggles returns an empty toggle set.
func NewToggles() *Toggles {
	return &Toggles{flags: make(map[string]bool)}
}

// Toggle flips key and returns its new value. An unknown key is created
// false and then flipped, so the first call returns true.
func (t *Toggles) Toggle(key string) bool {
	if t.flags == nil {
		t.flags = make(map[string]bool)
	}
	v := !t.flags[key]
	t.flags[key] = v
	return v
}

// Peek reads key without creating or changing it. Unknown keys read false.
func (t *Toggles) Peek(key string) bool {
	return t.flags[key]
}

// Keys returns the flags touched so far, sorted.
func (t *Toggles) Keys() []string {
	keys := make([]string, 0, len(t.flags))
	for k := range t.flags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot copies the current flag values.
func (t *Toggles) Snapshot() map[string]bool {
	out := make(map[string]bool, len(t.flags))
	for k, v := range t.flags {
		out[k] = v
	}
	return out
}
