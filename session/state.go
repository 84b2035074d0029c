package session

// State is everything one session remembers between interactions: view
// toggles and page selections (city, genre, platforms, publishers). Page
// handlers receive it explicitly.
type State struct {
	Toggles    *Toggles
	selections map[string][]string
}

// NewState returns an empty state.
func NewState() *State {
	return &State{
		Toggles:    NewToggles(),
		selections: make(map[string][]string),
	}
}

// Select replaces the selection stored under key.
func (s *State) Select(key string, values ...string) {
	if s.selections == nil {
		s.selections = make(map[string][]string)
	}
	s.selections[key] = append([]string(nil), values...)
}

// Selection returns the values stored under key and whether the key was
// ever set. An explicit empty selection reports ok.
func (s *State) Selection(key string) ([]string, bool) {
	v, ok := s.selections[key]
	return append([]string(nil), v...), ok
}

// First returns the first selected value under key, or def when nothing is
// selected.
func (s *State) First(key, def string) string {
	if v := s.selections[key]; len(v) > 0 {
		return v[0]
	}
	return def
}

// Selections copies every stored selection.
func (s *State) Selections() map[string][]string {
	out := make(map[string][]string, len(s.selections))
	for k, v := range s.selections {
		out[k] = append([]string(nil), v...)
	}
	return out
}
