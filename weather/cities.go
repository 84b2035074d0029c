package weather

// Cities is the selectable city list, in display order.
var Cities = []string{
	"Medellín", "Bogotá", "Cali", "Barranquilla", "Cartagena",
	"Londres", "Nueva York", "París", "Tokio", "Sídney", "Buenos Aires", "Madrid", "Ciudad de México",
}

// DefaultCity is selected when a session has not chosen one.
var DefaultCity = Cities[0]

// KnownCity reports whether name is in Cities.
func KnownCity(name string) bool {
	for _, c := range Cities {
		if c == name {
			return true
		}
	}
	return false
}
