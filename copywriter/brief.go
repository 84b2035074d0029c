package copywriter

import (
	"errors"
	"fmt"
	"strings"
)

// ============================================================================
// BRIEF — user inputs and prompt construction
// ============================================================================

// Tones offered to the user, in display order.
var Tones = []string{
	"Informativo (enfoque en datos y funcionalidades)",
	"Emocional (enfoque en sentimientos y experiencias)",
	"Urgente (enfoque en la escasez y la acción rápida)",
	"Innovador (enfoque en tecnología y el futuro)",
	"Divertido (enfoque en el humor y la ligereza)",
	"Lujoso (enfoque en la exclusividad y la calidad premium)",
	"Directo a la venta (énfasis en beneficios y cierre)",
}

// Length is the requested ad-copy length.
type Length string

const (
	LengthShort  Length = "Cortos (frases directas)"
	LengthMedium Length = "Medianos (1-2 párrafos)"
	LengthLong   Length = "Largos (2-4 párrafos, con más detalle)"
)

// Lengths in display order.
var Lengths = []Length{LengthShort, LengthMedium, LengthLong}

// ParseLength accepts a full label or one of short, medium, long.
func ParseLength(s string) (Length, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "short", "corto", "cortos", strings.ToLower(string(LengthShort)):
		return LengthShort, nil
	case "medium", "mediano", "medianos", strings.ToLower(string(LengthMedium)):
		return LengthMedium, nil
	case "long", "largo", "largos", strings.ToLower(string(LengthLong)):
		return LengthLong, nil
	}
	return "", fmt.Errorf("unknown copy length %q", s)
}

// MaxTokens is the output budget for one batch of copies.
func (l Length) MaxTokens() int {
	switch l {
	case LengthMedium:
		return 200
	case LengthLong:
		return 350
	}
	return 100
}

// Generation settings.
const (
	DescriptionTemperature = 0.7
	DescriptionMaxTokens   = 400
	CopiesTemperature      = 0.9

	MinCopies     = 1
	MaxCopies     = 5
	DefaultCopies = 3
)

// ErrIncompleteBrief means a required input is blank.
var ErrIncompleteBrief = errors.New("ingresa toda la información del producto y el público objetivo")

// Brief is everything the user enters on the marketing page.
type Brief struct {
	Product  string `json:"product"`
	Brand    string `json:"brand"`
	Features string `json:"features"`
	Audience string `json:"audience"`
	Tone     string `json:"tone"`
	Copies   int    `json:"copies"`
	Length   Length `json:"length"`
}

// DefaultBrief holds the sample inputs shown on first load.
func DefaultBrief() Brief {
	return Brief{
		Product:  "Cafetera",
		Brand:    "AromaMax Pro",
		Features: "Prepara café en 30 segundos, Control por app móvil, Molinillo integrado, Diseño elegante, Capacidad para 10 tazas, Funciona con granos enteros o molidos",
		Audience: "Amantes del café que valoran la comodidad y el diseño.",
		Tone:     Tones[0],
		Copies:   DefaultCopies,
		Length:   LengthShort,
	}
}

// Validate reports blank inputs and an out-of-range copy count. Tone and
// length fall back to their defaults when empty.
func (b *Brief) Validate() error {
	var missing []string
	for _, f := range []struct{ name, v string }{
		{"product", b.Product},
		{"brand", b.Brand},
		{"features", b.Features},
		{"audience", b.Audience},
	} {
		if strings.TrimSpace(f.v) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w (falta: %s)", ErrIncompleteBrief, strings.Join(missing, ", "))
	}
	if b.Copies == 0 {
		b.Copies = DefaultCopies
	}
	if b.Copies < MinCopies || b.Copies > MaxCopies {
		return fmt.Errorf("copies must be between %d and %d, got %d", MinCopies, MaxCopies, b.Copies)
	}
	if b.Tone == "" {
		b.Tone = Tones[0]
	}
	if b.Length == "" {
		b.Length = LengthShort
	}
	return nil
}

// ToneName is the first word of the tone, used in headings.
func (b Brief) ToneName() string {
	name, _, _ := strings.Cut(b.Tone, " ")
	return name
}

// DescriptionPrompt builds the e-commerce product description prompt.
func DescriptionPrompt(b Brief) string {
	var sb strings.Builder
	sb.WriteString("Eres un experto en marketing digital y redacción de descripciones de productos para tiendas online (e-commerce).\n")
	sb.WriteString("Tu objetivo es crear una descripción de producto atractiva, detallada, concisa, persuasiva y optimizada para la venta.\n")
	sb.WriteString("Incluye un párrafo introductorio, un párrafo de beneficios/características clave, y una llamada a la acción (CTA) clara al final.\n\n")
	fmt.Fprintf(&sb, "Producto: '%s'\n", b.Product)
	fmt.Fprintf(&sb, "Marca/Modelo: '%s'\n", b.Brand)
	fmt.Fprintf(&sb, "Características clave: %s\n", b.Features)
	fmt.Fprintf(&sb, "Público Objetivo: %s\n", b.Audience)
	fmt.Fprintf(&sb, "Tono de Marketing: %s\n\n", b.Tone)
	sb.WriteString("Enfócate en cómo este producto resuelve un problema o mejora la vida del cliente.\n")
	sb.WriteString("Asegúrate de que sea fácil de leer y escanear.\n")
	return sb.String()
}

// CopiesPrompt builds the numbered ad-copy prompt.
func CopiesPrompt(b Brief) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Eres un copywriter publicitario experto. Tu objetivo es crear %d copys distintos, persuasivos y optimizados para anuncios de marketing digital (ej. redes sociales, Google Ads).\n\n", b.Copies)
	fmt.Fprintf(&sb, "Producto: '%s', modelo '%s'.\n", b.Product, b.Brand)
	fmt.Fprintf(&sb, "Características clave: %s\n", b.Features)
	fmt.Fprintf(&sb, "Público Objetivo: %s\n", b.Audience)
	fmt.Fprintf(&sb, "El tono para los copys debe ser: **%s**.\n", b.Tone)
	fmt.Fprintf(&sb, "La longitud de cada copy debe ser: **%s**.\n", b.Length)
	sb.WriteString("Cada copy debe ser conciso (dentro de la longitud especificada), persuasivo, enfocado en un beneficio clave o un llamado a la acción.\n")
	sb.WriteString("Incluye un llamado a la acción claro al final de cada copy (ej. \"¡Compra ahora!\", \"Descubre más\", \"Visita nuestra web\").\n")
	sb.WriteString("Formato: Lista numerada de copys.\n\n")
	sb.WriteString("Ejemplo de formato de respuesta:\n")
	sb.WriteString("1. [Copy 1 con CTA]\n")
	sb.WriteString("2. [Copy 2 con CTA]\n")
	return sb.String()
}
