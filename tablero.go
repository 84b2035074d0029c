// Package tablero is a sales dashboard built on a tabular view-filter
// engine.
//
// Usage:
//
//	import "github.com/cesde-ntp/tablero/engine"
//
//	out, err := engine.Execute(engine.Query{
//	    Filter:      &f,
//	    Aggregation: &engine.AggregationSpec{GroupBy: []string{"Género"}, Reducer: engine.ReduceSum},
//	}, sales, engine.WithDefaultTarget("Ventas_GLOBALES"))
//
// The engine takes a Query and an immutable Table and returns a new Table;
// the chart, table and text builders turn results into render
// instructions. Pages in the dashboard package combine those with
// per-session toggles, and the server and cmd/tablero packages expose them
// over HTTP and in the terminal.
//
// The engine never calls any external service. Only the weather and
// copywriter packages reach the network.
package tablero
