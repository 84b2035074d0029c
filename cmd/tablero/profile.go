package main

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cesde-ntp/tablero/dataset"
	"github.com/cesde-ntp/tablero/schema"
)

var (
	profileSample  int
	profileRecover []string
)

// profileCmd prints the discovered shape of a CSV file.
var profileCmd = &cobra.Command{
	Use:   "profile [csv]",
	Short: "Profile a CSV: column roles, kinds, cardinality and hierarchies",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProfile,
}

func init() {
	profileCmd.Flags().IntVar(&profileSample, "sample", 5000, "rows to inspect (0 = all)")
	profileCmd.Flags().StringSliceVar(&profileRecover, "recover", nil, "skipped columns to keep as dimensions")
}

func runProfile(cmd *cobra.Command, args []string) error {
	path := app.cfg.DataPath
	if len(args) == 1 {
		path = args[0]
	}
	raw, err := dataset.Load(path)
	if err != nil {
		return exitError(ExitDataUnavailable, "tablero: %v", err)
	}

	p := schema.Discover(raw, schema.DiscoverOptions{
		SampleSize:     profileSample,
		RecoverColumns: profileRecover,
		Name:           strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	})
	app.logger.Info("profile built", "columns", len(p.Columns), "skipped", len(p.SkippedColumns))

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}
