package main

import (
	"github.com/spf13/cobra"

	"github.com/cesde-ntp/tablero/dashboard"
)

// standingsCmd prints the static club standings.
var standingsCmd = &cobra.Command{
	Use:   "standings",
	Short: "Print the club standings table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPage(cmd, dashboard.New(app.logger, dashboard.NewStandings()), "posiciones")
	},
}
