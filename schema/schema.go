// Package schema profiles tables: per-column role, cardinality, temporal
// hints and hierarchies, plus a loader policy inferred from raw text.
package schema

import (
	"github.com/cesde-ntp/tablero/engine"
)

// ============================================================================
// SCHEMA — Describes the shape of a table for pages and the CLI
// ============================================================================
// Discovered from a loaded table. The exploration page renders it as the
// column-info view; the CLI uses the inferred policy for files other than
// the sales dataset.
// ============================================================================

// Role is how a column is used by grouping and aggregation.
type Role string

const (
	RoleDimension Role = "dimension"
	RoleMeasure   Role = "measure"
	RoleSkipped   Role = "skipped"
)

// Profile describes the complete shape of a table.
type Profile struct {
	Name    string          `json:"name"`
	Rows    int             `json:"rows"`
	Columns []ColumnProfile `json:"columns"`

	// Columns skipped during discovery
	SkippedColumns []SkippedColumn `json:"skippedColumns,omitempty"`
}

// ColumnProfile describes one column.
type ColumnProfile struct {
	Name            string      `json:"name"`
	DisplayName     string      `json:"displayName"`
	Kind            engine.Kind `json:"kind"`
	Role            Role        `json:"role"`
	Unique          int         `json:"unique"`
	Missing         int         `json:"missing"`
	SampleValues    []string    `json:"sampleValues,omitempty"`
	CardinalityHint string      `json:"cardinalityHint,omitempty"` // "low", "medium", "high"
	IsTemporal      bool        `json:"isTemporal,omitempty"`
	TemporalFormat  string      `json:"temporalFormat,omitempty"`
	Parent          string      `json:"parent,omitempty"` // parent dimension for hierarchies
}

// SkippedColumn records why a column was excluded from grouping.
type SkippedColumn struct {
	Column      string `json:"column"`
	Reason      string `json:"reason"`
	Recoverable bool   `json:"recoverable"` // can be restored by the caller
}

// Dimensions returns the names of dimension columns.
func (p Profile) Dimensions() []string { return p.names(RoleDimension) }

// Measures returns the names of measure columns.
func (p Profile) Measures() []string { return p.names(RoleMeasure) }

func (p Profile) names(r Role) []string {
	var out []string
	for _, c := range p.Columns {
		if c.Role == r {
			out = append(out, c.Name)
		}
	}
	return out
}

// Lookup finds a column profile by name.
func (p Profile) Lookup(name string) (ColumnProfile, bool) {
	for _, c := range p.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnProfile{}, false
}

// DefaultMeasure returns the first measure, or "" when there is none.
func (p Profile) DefaultMeasure() string {
	if m := p.Measures(); len(m) > 0 {
		return m[0]
	}
	return ""
}

// Table renders the profile as a table: one row per column with its
// declared kind, role and counts.
func (p Profile) Table() *engine.Table {
	cols := []engine.Column{
		{Name: "Columna", Kind: engine.KindString},
		{Name: "Tipo", Kind: engine.KindCategorical},
		{Name: "Rol", Kind: engine.KindCategorical},
		{Name: "Únicos", Kind: engine.KindInteger},
		{Name: "Faltantes", Kind: engine.KindInteger},
	}
	rows := make([][]engine.Value, len(p.Columns))
	for i, c := range p.Columns {
		rows[i] = []engine.Value{
			engine.String(c.Name),
			engine.Categorical(c.Kind.String()),
			engine.Categorical(string(c.Role)),
			engine.Int(int64(c.Unique)),
			engine.Int(int64(c.Missing)),
		}
	}
	return engine.MustNew(cols, rows)
}
