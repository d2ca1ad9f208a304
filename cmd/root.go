package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "aischool",
	Short: "Mastery analytics and adaptive assessment service",
	Long: "aischool serves mastery reports, learning curves and adaptive assessment sessions\n" +
		"over HTTP, and offers CLI tools to load data, inspect reports and practice in the terminal.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides AISCHOOL_DB)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides AISCHOOL_CONFIG)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}
