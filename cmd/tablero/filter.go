package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cesde-ntp/tablero/engine"
	"github.com/cesde-ntp/tablero/render"
)

var (
	filterEq      []string
	filterNe      []string
	filterIn      []string
	filterGt      []string
	filterGte     []string
	filterLt      []string
	filterLte     []string
	filterAny     bool
	filterNegate  bool
	filterMask    bool
	filterLimit   int
	filterColumns []string
	filterJSON    bool
)

// filterCmd filters the sales table from the command line.
var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Filter the sales table with column conditions",
	Long: `Filter the sales table. Conditions take column=value and combine with
AND, or with OR under --any. Numeric columns compare by number.

  tablero filter --eq Editor=Nintendo --gt Ventas_NA=2
  tablero filter --in "Plataforma=PS4|XOne|PC"
  tablero filter --in "Género=Sports|Racing" --not
  tablero filter --lt Ventas_GLOBALES=5 --mask`,
	Args: cobra.NoArgs,
	RunE: runFilter,
}

func init() {
	f := filterCmd.Flags()
	f.StringArrayVar(&filterEq, "eq", nil, "column=value equality (repeatable)")
	f.StringArrayVar(&filterNe, "ne", nil, "column=value inequality (repeatable)")
	f.StringArrayVar(&filterIn, "in", nil, "column=a|b|c membership (repeatable)")
	f.StringArrayVar(&filterGt, "gt", nil, "column=x, keep values > x (repeatable)")
	f.StringArrayVar(&filterGte, "gte", nil, "column=x, keep values >= x (repeatable)")
	f.StringArrayVar(&filterLt, "lt", nil, "column=x, keep values < x (repeatable)")
	f.StringArrayVar(&filterLte, "lte", nil, "column=x, keep values <= x (repeatable)")
	f.BoolVar(&filterAny, "any", false, "combine conditions with OR")
	f.BoolVar(&filterNegate, "not", false, "negate the combined condition")
	f.BoolVar(&filterMask, "mask", false, "blank matching rows instead of keeping them")
	f.IntVarP(&filterLimit, "limit", "n", 20, "rows to print (0 = all)")
	f.StringSliceVar(&filterColumns, "columns", nil, "columns to print")
	f.BoolVar(&filterJSON, "json", false, "print matching rows as JSON records")
}

func runFilter(cmd *cobra.Command, _ []string) error {
	t, err := loadSales()
	if err != nil {
		return err
	}
	f, err := buildFilter(t)
	if err != nil {
		return exitError(ExitInvalidArgs, "tablero: %v", err)
	}

	q := engine.Query{Limit: filterLimit, Select: filterColumns}
	if filterMask {
		q.Mask = &f
	} else {
		q.Filter = &f
	}
	out, err := engine.Execute(q, t, engine.WithLogger(app.logger))
	if err != nil {
		return exitError(ExitInvalidArgs, "tablero: %v", err)
	}
	app.logger.Info("filter applied", "filter", f.String(), "rows", out.Len())
	return writeTable(cmd, f.String(), out, filterJSON)
}

// buildFilter turns the condition flags into one filter over t's columns.
func buildFilter(t *engine.Table) (engine.Filter, error) {
	var leaves []engine.Filter
	add := func(specs []string, build func(col string, raw string, c engine.Column) (engine.Filter, error)) error {
		for _, spec := range specs {
			col, raw, ok := strings.Cut(spec, "=")
			if !ok || col == "" {
				return fmt.Errorf("condition %q: want column=value", spec)
			}
			c, ok := t.Column(col)
			if !ok {
				return fmt.Errorf("condition %q: unknown column %q", spec, col)
			}
			f, err := build(col, raw, c)
			if err != nil {
				return fmt.Errorf("condition %q: %w", spec, err)
			}
			leaves = append(leaves, f)
		}
		return nil
	}
	equality := func(mk func(string, any) engine.Filter) func(string, string, engine.Column) (engine.Filter, error) {
		return func(col, raw string, c engine.Column) (engine.Filter, error) {
			v, err := parseValue(raw, c)
			if err != nil {
				return engine.Filter{}, err
			}
			return mk(col, v), nil
		}
	}
	numeric := func(mk func(string, float64) engine.Filter) func(string, string, engine.Column) (engine.Filter, error) {
		return func(col, raw string, c engine.Column) (engine.Filter, error) {
			if !c.Kind.Numeric() {
				return engine.Filter{}, fmt.Errorf("column %q is %s, want numeric", col, c.Kind)
			}
			x, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return engine.Filter{}, fmt.Errorf("%q is not a number", raw)
			}
			return mk(col, x), nil
		}
	}
	membership := func(col, raw string, c engine.Column) (engine.Filter, error) {
		parts := strings.Split(raw, "|")
		vals := make([]any, len(parts))
		for i, p := range parts {
			v, err := parseValue(p, c)
			if err != nil {
				return engine.Filter{}, err
			}
			vals[i] = v
		}
		return engine.InSet(col, vals...), nil
	}

	for _, step := range []struct {
		specs []string
		build func(string, string, engine.Column) (engine.Filter, error)
	}{
		{filterEq, equality(engine.Equals)},
		{filterNe, equality(engine.NotEquals)},
		{filterIn, membership},
		{filterGt, numeric(engine.GreaterThan)},
		{filterGte, numeric(engine.AtLeast)},
		{filterLt, numeric(engine.LessThan)},
		{filterLte, numeric(engine.AtMost)},
	} {
		if err := add(step.specs, step.build); err != nil {
			return engine.Filter{}, err
		}
	}

	var f engine.Filter
	switch {
	case len(leaves) == 0:
		f = engine.All()
	case len(leaves) == 1:
		f = leaves[0]
	case filterAny:
		f = engine.Or(leaves...)
	default:
		f = engine.And(leaves...)
	}
	if filterNegate {
		f = engine.Not(f)
	}
	return f, nil
}

// parseValue reads raw as the column's kind so equality is exact over the
// declared type.
func parseValue(raw string, c engine.Column) (engine.Value, error) {
	if !c.Kind.Numeric() {
		return engine.String(raw), nil
	}
	x, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return engine.Value{}, fmt.Errorf("%q is not a number", raw)
	}
	return engine.Float(x).As(c.Kind), nil
}

// writeTable prints t as a terminal table or as JSON records.
func writeTable(cmd *cobra.Command, title string, t *engine.Table, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(t.Records())
	}
	return render.TableData(out, engine.BuildTable(title, t))
}
