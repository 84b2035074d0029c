// Package dashboard turns session state into render instructions for each
// page of the tablero dashboard, and applies user actions to that state.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cesde-ntp/tablero/dataset"
	"github.com/cesde-ntp/tablero/engine"
	"github.com/cesde-ntp/tablero/faults"
	"github.com/cesde-ntp/tablero/session"
)

var (
	// ErrUnknownPage means no page is registered under the name.
	ErrUnknownPage = errors.New("unknown page")

	// ErrInvalidAction means the page does not accept the action or its
	// arguments.
	ErrInvalidAction = errors.New("invalid action")
)

// Action types.
const (
	ActionToggle   = "toggle"
	ActionSelect   = "select"
	ActionRefresh  = "refresh"
	ActionGenerate = "generate"
)

// Action is one user interaction.
type Action struct {
	Type   string   `json:"type"`
	Key    string   `json:"key,omitempty"`
	Values []string `json:"values,omitempty"`
	// Fields carries form inputs, keyed like the page's input controls.
	Fields map[string]string `json:"fields,omitempty"`
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidAction, fmt.Sprintf(format, args...))
}

// Page renders one screen and applies its actions. Render never fails: data
// and remote failures become notices. Act fails only with ErrInvalidAction.
type Page interface {
	Name() string
	Title() string
	Render(ctx context.Context, st *session.State) *Render
	Act(ctx context.Context, st *session.State, a Action) (*Render, error)
}

// ============================================================================
// DASHBOARD — page registry
// ============================================================================

// Dashboard routes renders and actions to registered pages.
type Dashboard struct {
	pages  map[string]Page
	order  []string
	logger *slog.Logger
}

// New registers pages in display order.
func New(logger *slog.Logger, pages ...Page) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dashboard{pages: make(map[string]Page, len(pages)), logger: logger}
	for _, p := range pages {
		d.pages[p.Name()] = p
		d.order = append(d.order, p.Name())
	}
	return d
}

// PageInfo names a page for menus.
type PageInfo struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Pages lists the registered pages in display order.
func (d *Dashboard) Pages() []PageInfo {
	out := make([]PageInfo, len(d.order))
	for i, n := range d.order {
		out[i] = PageInfo{Name: n, Title: d.pages[n].Title()}
	}
	return out
}

// Render renders a page for a session.
func (d *Dashboard) Render(ctx context.Context, page string, st *session.State) (*Render, error) {
	p, ok := d.pages[page]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPage, page)
	}
	return p.Render(ctx, st), nil
}

// Act applies an action and returns the next render.
func (d *Dashboard) Act(ctx context.Context, page string, st *session.State, a Action) (*Render, error) {
	p, ok := d.pages[page]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPage, page)
	}
	r, err := p.Act(ctx, st, a)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("action applied", "page", page, "type", a.Type, "key", a.Key)
	return r, nil
}

// ============================================================================
// SALES SOURCE
// ============================================================================

// SalesSource yields the normalized sales table.
type SalesSource func() (*engine.Table, error)

// LoadOnce reads the sales file on first use and shares the result, error
// included, with every later caller.
func LoadOnce(path string) SalesSource {
	return sync.OnceValues(func() (*engine.Table, error) {
		return dataset.LoadVGSales(path)
	})
}

// StaticSales serves an already loaded table.
func StaticSales(t *engine.Table) SalesSource {
	return func() (*engine.Table, error) { return t, nil }
}

// dataFailure is the whole render of a page whose data could not load.
func dataFailure(name, title string, err error) *Render {
	msg := "No se pudieron cargar los datos."
	if errors.Is(err, faults.ErrDataUnavailable) {
		msg = fmt.Sprintf("No se pudieron cargar los datos: %v", err)
	}
	return &Render{Page: name, Title: title, Sections: []Section{Notice(LevelError, msg)}}
}

// contains reports whether v is one of opts.
func contains(opts []string, v string) bool {
	for _, o := range opts {
		if o == v {
			return true
		}
	}
	return false
}

// subset reports whether every value is one of opts.
func subset(opts, values []string) bool {
	for _, v := range values {
		if !contains(opts, v) {
			return false
		}
	}
	return true
}

// firstSeen lists the distinct present values of column in row order.
func firstSeen(t *engine.Table, column string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range t.ColumnValues(column) {
		if v.IsMissing() || seen[v.Text()] {
			continue
		}
		seen[v.Text()] = true
		out = append(out, v.Text())
	}
	return out
}

// columnText lists every value of a column as text.
func columnText(t *engine.Table, column string) []string {
	vals := t.ColumnValues(column)
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.Text()
	}
	return out
}
