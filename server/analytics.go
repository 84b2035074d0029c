package server

import (
	"net/http"

	"github.com/cesde-ntp/tablero/engine"
)

// Products table columns served by the analytics API.
const (
	colCategory = "Categoría"
	colRevenue  = "Ingresos"
)

func (s *Server) handleWelcome(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Bienvenido a la API de resultados analíticos",
	})
}

func (s *Server) handleRecords(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.products.Records())
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, engine.Describe(s.products))
}

type categoryFilter struct {
	Categoria *string `json:"categoria"`
}

// handleFilter keeps the products of one category; an empty or absent
// category returns every product.
func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	var f categoryFilter
	if err := decode(r, &f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	out := s.products
	if f.Categoria != nil && *f.Categoria != "" {
		out = engine.Apply(out, engine.Equals(colCategory, *f.Categoria))
	}
	writeJSON(w, http.StatusOK, out.Records())
}

func (s *Server) handleRevenueByCategory(w http.ResponseWriter, _ *http.Request) {
	sums, err := engine.Aggregate(s.products, engine.AggregationSpec{
		GroupBy: []string{colCategory}, Target: colRevenue, Reducer: engine.ReduceSum,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make(map[string]engine.Value, sums.Len())
	for i := 0; i < sums.Len(); i++ {
		out[sums.Value(i, colCategory).Text()] = sums.Value(i, colRevenue)
	}
	writeJSON(w, http.StatusOK, out)
}
