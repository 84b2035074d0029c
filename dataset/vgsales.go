package dataset

import (
	"fmt"

	"github.com/cesde-ntp/tablero/engine"
)

// Column names of the normalized sales table.
const (
	ColRank     = "Rank"
	ColName     = "Nombre"
	ColPlatform = "Plataforma"
	ColYear     = "Año"
	ColGenre    = "Género"
	ColEditor   = "Editor"
	ColSalesNA  = "Ventas_NA"
	ColSalesEU  = "Ventas_EU"
	ColSalesJP  = "Ventas_JP"
	ColSalesOth = "Ventas_OTRAS"
	ColSalesAll = "Ventas_GLOBALES"
)

// RegionalSales lists the per-region sales columns, without the global total.
var RegionalSales = []string{ColSalesNA, ColSalesEU, ColSalesJP, ColSalesOth}

// SalesColumns lists every sales column.
var SalesColumns = []string{ColSalesNA, ColSalesEU, ColSalesJP, ColSalesOth, ColSalesAll}

// VGSalesPolicy is the fixed vocabulary for the video game sales file. A
// missing sales figure counts as zero, so group means include it; a missing
// year stays missing and never forms a group.
func VGSalesPolicy() Policy {
	return Policy{
		Rename: map[string]string{
			"Name":         ColName,
			"Platform":     ColPlatform,
			"Year":         ColYear,
			"Genre":        ColGenre,
			"Publisher":    ColEditor,
			"NA_Sales":     ColSalesNA,
			"EU_Sales":     ColSalesEU,
			"JP_Sales":     ColSalesJP,
			"Other_Sales":  ColSalesOth,
			"Global_Sales": ColSalesAll,
		},
		Text:      []string{ColName},
		Integer:   []string{ColRank, ColYear},
		Float:     SalesColumns,
		FillZero:  SalesColumns,
		FillLabel: []string{ColEditor, ColGenre},
		Label:     DefaultLabel,
	}
}

// LoadVGSales loads and normalizes the sales file at path.
func LoadVGSales(path string) (*engine.Table, error) {
	raw, err := Load(path)
	if err != nil {
		return nil, err
	}
	t, err := Normalize(raw, VGSalesPolicy())
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", path, err)
	}
	return t, nil
}
