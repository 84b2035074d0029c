package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cesde-ntp/tablero/dataset"
	"github.com/cesde-ntp/tablero/engine"
	"github.com/cesde-ntp/tablero/schema"
)

var (
	queryFile  string
	querySales bool
	queryJSON  bool
)

// queryCmd runs a JSON query against the sales table or any CSV.
var queryCmd = &cobra.Command{
	Use:   "query [json]",
	Short: "Run a JSON query (filter, mask, aggregation, sort, limit, select)",
	Long: `Run a query given as JSON, as an argument or on stdin:

  tablero query '{"filter":{"op":"gt","column":"Ventas_JP","value":1},"limit":5}'
  tablero query '{"aggregation":{"groupBy":["Género"],"target":"Ventas_GLOBALES","reducer":"sum","topN":3}}'
  echo '{"sortBy":"Año","descending":true}' | tablero query

With --file and --sales=false any CSV loads with a policy inferred from its
contents.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

func init() {
	f := queryCmd.Flags()
	f.StringVar(&queryFile, "file", "", "CSV to query (default: the sales dataset)")
	f.BoolVar(&querySales, "sales", true, "load --file with the sales column vocabulary")
	f.BoolVar(&queryJSON, "json", false, "print result rows as JSON records")
}

func runQuery(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		r = strings.NewReader(args[0])
	}
	var q engine.Query
	if err := json.NewDecoder(r).Decode(&q); err != nil {
		return exitError(ExitInvalidArgs, "tablero: parse query: %v", err)
	}

	t, err := queryTable()
	if err != nil {
		return err
	}
	opts := []engine.Option{engine.WithLogger(app.logger)}
	if querySales && t.Has(dataset.ColSalesAll) {
		opts = append(opts, engine.WithDefaultTarget(dataset.ColSalesAll))
	}
	out, err := engine.Execute(q, t, opts...)
	if err != nil {
		return exitError(ExitInvalidArgs, "tablero: %v", err)
	}
	return writeTable(cmd, fmt.Sprintf("%d filas", out.Len()), out, queryJSON)
}

// queryTable loads the table the query runs on.
func queryTable() (*engine.Table, error) {
	switch {
	case queryFile == "":
		return loadSales()
	case querySales:
		t, err := dataset.LoadVGSales(queryFile)
		if err != nil {
			return nil, exitError(ExitDataUnavailable, "tablero: %v", err)
		}
		return t, nil
	}
	return loadInferred(queryFile)
}

// loadInferred loads any CSV and types it with an inferred policy.
func loadInferred(path string) (*engine.Table, error) {
	raw, err := dataset.Load(path)
	if err != nil {
		return nil, exitError(ExitDataUnavailable, "tablero: %v", err)
	}
	t, err := dataset.Normalize(raw, schema.InferPolicy(raw))
	if err != nil {
		return nil, exitError(ExitDataUnavailable, "tablero: %v", err)
	}
	return t, nil
}

