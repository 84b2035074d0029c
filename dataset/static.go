package dataset

import (
	"github.com/cesde-ntp/tablero/engine"
)

// ============================================================================
// STATIC TABLES — Built from column dicts
// ============================================================================

// Products is the demo catalogue served by the analytics API, with the
// derived revenue column Ingresos = Ventas × Precio.
func Products() *engine.Table {
	base := engine.MustNew(
		[]engine.Column{
			{Name: "Producto", Kind: engine.KindString},
			{Name: "Categoría", Kind: engine.KindCategorical},
			{Name: "Ventas", Kind: engine.KindInteger},
			{Name: "Precio", Kind: engine.KindFloat},
		},
		[][]engine.Value{
			{engine.String("Producto A"), engine.Categorical("Electrónica"), engine.Int(100), engine.Float(50)},
			{engine.String("Producto B"), engine.Categorical("Ropa"), engine.Int(150), engine.Float(30)},
			{engine.String("Producto C"), engine.Categorical("Alimentos"), engine.Int(200), engine.Float(20)},
			{engine.String("Producto D"), engine.Categorical("Electrónica"), engine.Int(80), engine.Float(100)},
		},
	)
	out, err := engine.Derive(base, engine.Column{Name: "Ingresos", Kind: engine.KindFloat}, func(r engine.Row) engine.Value {
		units, _ := r.Get("Ventas").Number()
		price, _ := r.Get("Precio").Number()
		return engine.Float(units * price)
	})
	if err != nil {
		panic(err)
	}
	return out
}

// Standings is the club table. The source dict holds numbers as text; the
// policy types them.
func Standings() *engine.Table {
	text := func(vs ...string) []engine.Value {
		out := make([]engine.Value, len(vs))
		for i, v := range vs {
			out[i] = engine.String(v)
		}
		return out
	}
	cols := []engine.Column{{Name: "Club"}, {Name: "Ganados"}, {Name: "Empatados"}, {Name: "Perdidos"}, {Name: "Puntos"}}
	raw, err := engine.FromColumns(cols, map[string][]engine.Value{
		"Club":      text("FC Barcelona", "Real Madrid CF", "Atletico Madrid", "Valencia", "Sevilla"),
		"Ganados":   text("10", "8", "6", "4", "2"),
		"Empatados": text("0", "1", "2", "3", "5"),
		"Perdidos":  text("0", "1", "2", "3", "3"),
		"Puntos":    text("30", "25", "20", "15", "10"),
	})
	if err != nil {
		panic(err)
	}
	t, err := Normalize(raw, Policy{
		Text:    []string{"Club"},
		Integer: []string{"Ganados", "Empatados", "Perdidos", "Puntos"},
	})
	if err != nil {
		panic(err)
	}
	return engine.WithIndex(t, "Posición")
}
