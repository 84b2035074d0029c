package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/cesde-ntp/tablero/copywriter"
	"github.com/cesde-ntp/tablero/faults"
	"github.com/cesde-ntp/tablero/session"
)

// Brief input keys on the marketing page.
const (
	FieldProduct  = "producto"
	FieldBrand    = "marca"
	FieldFeatures = "caracteristicas"
	FieldAudience = "publico"
	FieldTone     = "tono"
	FieldCopies   = "copys"
	FieldLength   = "longitud"
)

// Copywriter produces marketing copy from a brief.
type Copywriter interface {
	Generate(ctx context.Context, b copywriter.Brief) (*copywriter.Result, error)
}

// MarketingPage collects a product brief and shows generated copy. Results
// are part of the render returned by the generate action only.
type MarketingPage struct {
	writer Copywriter
}

// NewMarketing builds the page. A nil writer renders a credentials warning
// on generate.
func NewMarketing(w Copywriter) *MarketingPage {
	return &MarketingPage{writer: w}
}

func (p *MarketingPage) Name() string  { return "marketing" }
func (p *MarketingPage) Title() string { return "Generador de Contenido de Marketing con IA" }

// brief reads the stored inputs over the defaults.
func brief(st *session.State) copywriter.Brief {
	b := copywriter.DefaultBrief()
	b.Product = st.First(FieldProduct, b.Product)
	b.Brand = st.First(FieldBrand, b.Brand)
	b.Features = st.First(FieldFeatures, b.Features)
	b.Audience = st.First(FieldAudience, b.Audience)
	b.Tone = st.First(FieldTone, b.Tone)
	b.Length = copywriter.Length(st.First(FieldLength, string(b.Length)))
	if n, err := strconv.Atoi(st.First(FieldCopies, "")); err == nil {
		b.Copies = n
	}
	return b
}

func (p *MarketingPage) Render(_ context.Context, st *session.State) *Render {
	return p.form(st)
}

func (p *MarketingPage) form(st *session.State) *Render {
	b := brief(st)
	lengths := make([]string, len(copywriter.Lengths))
	for i, l := range copywriter.Lengths {
		lengths[i] = string(l)
	}
	counts := make([]string, 0, copywriter.MaxCopies)
	for n := copywriter.MinCopies; n <= copywriter.MaxCopies; n++ {
		counts = append(counts, strconv.Itoa(n))
	}
	return &Render{
		Page:  p.Name(),
		Title: p.Title(),
		Controls: []Control{
			{Kind: ControlInput, Key: FieldProduct, Label: "Nombre Genérico del Producto (Ej: Cafetera, Smartphone)", Selected: []string{b.Product}},
			{Kind: ControlInput, Key: FieldBrand, Label: "Marca o Nombre Específico del Modelo (Ej: AromaMax Pro)", Selected: []string{b.Brand}},
			{Kind: ControlInput, Key: FieldFeatures, Label: "Características clave (separadas por comas o líneas)", Selected: []string{b.Features}},
			{Kind: ControlInput, Key: FieldAudience, Label: "¿Quién es tu público objetivo?", Selected: []string{b.Audience}},
			{Kind: ControlSelect, Key: FieldTone, Label: "Selecciona el Tono para los Copys Publicitarios y la Descripción:", Options: copywriter.Tones, Selected: []string{b.Tone}},
			{Kind: ControlSelect, Key: FieldCopies, Label: "Cantidad de Copys Publicitarios a Generar", Options: counts, Selected: []string{strconv.Itoa(b.Copies)}},
			{Kind: ControlSelect, Key: FieldLength, Label: "Longitud de los Copys:", Options: lengths, Selected: []string{string(b.Length)}},
			{Kind: ControlButton, Key: ActionGenerate, Label: "Generar Contenido de Marketing"},
		},
		Sections: []Section{
			TextSection("Descripción del Proyecto",
				"Crea descripciones de productos detalladas y copys publicitarios persuasivos, adaptados a tu público objetivo y tono de marketing deseado."),
		},
	}
}

// store validates every form field, then saves them all. A rejected field
// leaves the session untouched.
func (p *MarketingPage) store(st *session.State, fields map[string]string) error {
	clean := make(map[string]string, len(fields))
	for k, v := range fields {
		switch k {
		case FieldProduct, FieldBrand, FieldFeatures, FieldAudience:
		case FieldTone:
			if !contains(copywriter.Tones, v) {
				return invalid("unknown tone %q", v)
			}
		case FieldLength:
			l, err := copywriter.ParseLength(v)
			if err != nil {
				return invalid("%v", err)
			}
			v = string(l)
		case FieldCopies:
			n, err := strconv.Atoi(v)
			if err != nil || n < copywriter.MinCopies || n > copywriter.MaxCopies {
				return invalid("copies must be %d..%d, got %q", copywriter.MinCopies, copywriter.MaxCopies, v)
			}
		default:
			return invalid("unknown field %q", k)
		}
		clean[k] = v
	}
	for k, v := range clean {
		st.Select(k, v)
	}
	return nil
}

func (p *MarketingPage) Act(ctx context.Context, st *session.State, a Action) (*Render, error) {
	switch a.Type {
	case ActionSelect:
		if len(a.Values) != 1 {
			return nil, invalid("select %q takes one value", a.Key)
		}
		if err := p.store(st, map[string]string{a.Key: a.Values[0]}); err != nil {
			return nil, err
		}
		return p.form(st), nil
	case ActionGenerate:
		if err := p.store(st, a.Fields); err != nil {
			return nil, err
		}
		return p.generate(ctx, st), nil
	}
	return nil, invalid("page %s has no action %q", p.Name(), a.Type)
}

func (p *MarketingPage) generate(ctx context.Context, st *session.State) *Render {
	r := p.form(st)
	if p.writer == nil {
		r.Sections = append(r.Sections, Notice(LevelWarning, "Falta la clave de API del modelo de lenguaje."))
		return r
	}

	b := brief(st)
	res, err := p.writer.Generate(ctx, b)
	switch {
	case errors.Is(err, copywriter.ErrIncompleteBrief):
		r.Sections = append(r.Sections, Notice(LevelWarning,
			"Por favor, ingresa toda la información del producto y el público objetivo para generar el contenido."))
		return r
	case errors.Is(err, faults.ErrMissingCredential):
		r.Sections = append(r.Sections, Notice(LevelWarning, "Falta la clave de API del modelo de lenguaje."))
		return r
	case err != nil:
		r.Sections = append(r.Sections, Notice(LevelError, fmt.Sprintf("Error al generar contenido: %v", err)))
		return r
	}

	desc := TextSection("Descripción del Producto para E-commerce", res.Description)
	if res.DescriptionErr != nil {
		r.Sections = append(r.Sections, Notice(LevelError, "Error al generar la descripción del producto."))
	}
	r.Sections = append(r.Sections, desc)

	title := fmt.Sprintf("Copys para Anuncios (Tono: %s, Longitud: %s)", b.ToneName(), b.Length)
	switch {
	case res.CopiesErr != nil:
		r.Sections = append(r.Sections,
			Notice(LevelError, "Error al generar los copys."),
			TextSection(title, res.RawCopies))
	case res.Parsed():
		items := make([]string, len(res.Copies))
		for i, c := range res.Copies {
			items[i] = fmt.Sprintf("Copy %d: %s", i+1, c)
		}
		r.Sections = append(r.Sections, ListSection(title, items))
	default:
		r.Sections = append(r.Sections,
			Notice(LevelWarning, "No se pudieron extraer los copys generados o el modelo no devolvió una lista numerada. Intenta ajustar el prompt o la longitud."),
			TextSection("Salida bruta del modelo (para depuración)", res.RawCopies))
	}
	return r
}
