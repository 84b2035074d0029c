package main

import (
	"github.com/spf13/cobra"

	"github.com/cesde-ntp/tablero/dashboard"
)

var (
	chartsRegionalGenre string
	chartsYearlyGenre   string
	chartsDetailGenre   string
	chartsPublishers    []string
	chartsPlatforms     []string
	chartsRegion1       string
	chartsRegion2       string
)

// chartsCmd prints the six chart tabs as terminal bars.
var chartsCmd = &cobra.Command{
	Use:   "charts",
	Short: "Print the charts page",
	Args:  cobra.NoArgs,
	RunE:  runCharts,
}

func init() {
	f := chartsCmd.Flags()
	f.StringVar(&chartsRegionalGenre, "regional-genre", "", "genre compared across regions")
	f.StringVar(&chartsYearlyGenre, "yearly-genre", "", "genre followed per year")
	f.StringVar(&chartsDetailGenre, "genre", "", "genre for the deep-dive tab")
	f.StringSliceVar(&chartsPublishers, "publishers", nil, "publishers to compare")
	f.StringSliceVar(&chartsPlatforms, "platforms", nil, "platforms to compare by region")
	f.StringVar(&chartsRegion1, "region1", "", "x axis sales column of the region scatter")
	f.StringVar(&chartsRegion2, "region2", "", "y axis sales column of the region scatter")
}

func runCharts(cmd *cobra.Command, _ []string) error {
	if _, err := loadSales(); err != nil {
		return err
	}
	var actions []dashboard.Action
	sel := func(key string, values ...string) {
		if len(values) == 0 || (len(values) == 1 && values[0] == "") {
			return
		}
		actions = append(actions, dashboard.Action{Type: dashboard.ActionSelect, Key: key, Values: values})
	}
	sel(dashboard.SelectRegionalGenre, chartsRegionalGenre)
	sel(dashboard.SelectYearlyGenre, chartsYearlyGenre)
	sel(dashboard.SelectDetailGenre, chartsDetailGenre)
	sel(dashboard.SelectPublishers, chartsPublishers...)
	sel(dashboard.SelectPlatforms, chartsPlatforms...)
	sel(dashboard.SelectRegion1, chartsRegion1)
	sel(dashboard.SelectRegion2, chartsRegion2)

	d := dashboard.New(app.logger, dashboard.NewCharts(app.sales))
	return runPage(cmd, d, "graficos", actions...)
}
