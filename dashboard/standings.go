package dashboard

import (
	"context"

	"github.com/cesde-ntp/tablero/dataset"
	"github.com/cesde-ntp/tablero/engine"
	"github.com/cesde-ntp/tablero/session"
)

// StandingsPage shows the static club standings.
type StandingsPage struct {
	table *engine.Table
}

// NewStandings builds the page over dataset.Standings.
func NewStandings() *StandingsPage {
	return &StandingsPage{table: dataset.Standings()}
}

func (p *StandingsPage) Name() string  { return "posiciones" }
func (p *StandingsPage) Title() string { return "Tabla de posiciones" }

func (p *StandingsPage) Render(_ context.Context, _ *session.State) *Render {
	return &Render{
		Page:  p.Name(),
		Title: p.Title(),
		Sections: []Section{
			TableSection("Tabla de posiciones", p.table),
		},
	}
}

// Act rejects everything; the page has no controls.
func (p *StandingsPage) Act(_ context.Context, _ *session.State, a Action) (*Render, error) {
	return nil, invalid("page %s has no action %q", p.Name(), a.Type)
}
