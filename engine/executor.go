package engine

import (
	"fmt"
)

// ============================================================================
// EXECUTOR — Query pipeline over an immutable table
// ============================================================================
// Entry point: Execute(query, table, opts...)
//
// Pipeline:
//   1. Filter (Apply) → derived table sharing the source rows
//   2. Mask (optional) → matching rows blanked
//   3. Aggregate (optional) → one row per group
//   4. Sort (optional, explicit) → stable order by a column
//   5. Limit → head
//   6. Select (optional) → projection
//
// Every step yields a new table; the source is never touched.
// ============================================================================

// Query describes a full recomputation pass over a table.
type Query struct {
	Filter      *Filter          `json:"filter,omitempty"`
	Mask        *Filter          `json:"mask,omitempty"`
	Aggregation *AggregationSpec `json:"aggregation,omitempty"`
	SortBy      string           `json:"sortBy,omitempty"`
	Descending  bool             `json:"descending,omitempty"`
	Limit       int              `json:"limit,omitempty"` // 0 = all
	Select      []string         `json:"select,omitempty"`
}

// Validate checks the query's structure before any work is done.
func (q Query) Validate() error {
	if q.Filter != nil {
		if err := q.Filter.Validate(); err != nil {
			return fmt.Errorf("query filter: %w", err)
		}
	}
	if q.Mask != nil {
		if err := q.Mask.Validate(); err != nil {
			return fmt.Errorf("query mask: %w", err)
		}
	}
	if q.Limit < 0 {
		return fmt.Errorf("query limit must be >= 0, got %d", q.Limit)
	}
	if a := q.Aggregation; a != nil {
		if len(a.GroupBy) == 0 {
			return fmt.Errorf("query aggregation: groupBy is required")
		}
		if a.TopN < 0 {
			return fmt.Errorf("query aggregation: topN must be >= 0, got %d", a.TopN)
		}
	}
	return nil
}

// Execute runs q against t. Errors come from an invalid query or an
// aggregation over unknown columns; an empty result is not an error.
func Execute(q Query, t *Table, opts ...Option) (*Table, error) {
	cfg := applyOptions(opts)
	if err := q.Validate(); err != nil {
		return nil, err
	}

	out := t
	if q.Filter != nil {
		out = Apply(out, *q.Filter)
		cfg.Logger.Debug("filter applied", "filter", q.Filter.String(), "rows", out.Len(), "from", t.Len())
	}
	if q.Mask != nil {
		out = Mask(out, *q.Mask)
	}
	if q.Aggregation != nil {
		spec := *q.Aggregation
		if spec.Target == "" && spec.Reducer != ReduceCount {
			spec.Target = cfg.DefaultTarget
		}
		agg, err := Aggregate(out, spec)
		if err != nil {
			return nil, err
		}
		cfg.Logger.Debug("aggregated", "groupBy", spec.GroupBy, "reducer", spec.Reducer, "groups", agg.Len())
		out = agg
	}
	if q.SortBy != "" {
		out = SortBy(out, q.SortBy, q.Descending)
	}
	limit := q.Limit
	if limit == 0 {
		limit = cfg.MaxRows
	}
	if limit > 0 {
		out = Head(out, limit)
	}
	if len(q.Select) > 0 {
		out = Select(out, q.Select...)
	}
	return out, nil
}
