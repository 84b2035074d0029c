package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/cesde-ntp/tablero/dashboard"
)

var (
	exploreToggles  []string
	explorePlatform string
	exploreAll      bool
)

// exploreCmd prints the sales exploration page.
var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Print the sales dataset overview and toggled filter views",
	Long: `Print the "Proyecto integrador" page: preview, shape, column kinds,
rankings and averages, plus every filter view switched on with --toggle.

Toggle keys:
  ` + strings.Join(dashboard.ExplorationToggles(), "\n  "),
	Args: cobra.NoArgs,
	RunE: runExplore,
}

func init() {
	exploreCmd.Flags().StringSliceVarP(&exploreToggles, "toggle", "t", nil, "switch a view on (repeatable)")
	exploreCmd.Flags().StringVar(&explorePlatform, "platform", "", "platform for the platform filter view")
	exploreCmd.Flags().BoolVar(&exploreAll, "all", false, "switch every view on")
}

func runExplore(cmd *cobra.Command, _ []string) error {
	if _, err := loadSales(); err != nil {
		return err
	}
	toggles := exploreToggles
	if exploreAll {
		toggles = dashboard.ExplorationToggles()
	}
	var actions []dashboard.Action
	for _, key := range toggles {
		actions = append(actions, dashboard.Action{Type: dashboard.ActionToggle, Key: key})
	}
	if explorePlatform != "" {
		if !contains(toggles, dashboard.TogglePlatformFilter) {
			actions = append(actions, dashboard.Action{Type: dashboard.ActionToggle, Key: dashboard.TogglePlatformFilter})
		}
		actions = append(actions, dashboard.Action{
			Type: dashboard.ActionSelect, Key: dashboard.SelectPlatform, Values: []string{explorePlatform},
		})
	}

	d := dashboard.New(app.logger, dashboard.NewExploration(app.sales, 20))
	return runPage(cmd, d, "exploracion", actions...)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
