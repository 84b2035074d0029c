package main

import (
	"github.com/spf13/cobra"
)

// Global flag values.
var (
	verbose   bool
	quiet     bool
	noColor   bool
	logFormat string
	dataPath  string
	configDir string
)

// rootCmd is the base command for tablero.
var rootCmd = &cobra.Command{
	Use:   "tablero",
	Short: "Sales dashboard, weather panel and AI copywriter",
	Long: `Tablero explores the video-game sales dataset, shows club standings,
looks up the weather for a list of cities and writes marketing copy with a
language model. Every page renders in the terminal or over HTTP with
'tablero serve'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setupApp(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "path to the sales CSV (overrides config)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory holding tablero.yaml and .tablero/secrets.toml")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(chartsCmd)
	rootCmd.AddCommand(standingsCmd)
	rootCmd.AddCommand(weatherCmd)
	rootCmd.AddCommand(copyCmd)
	rootCmd.AddCommand(versionCmd)
}
