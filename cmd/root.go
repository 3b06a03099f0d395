package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/pageutil/internal/config"
	"github.com/ziadkadry99/pageutil/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pageutil",
	Short: "Page quiescence registry and localized string service",
	Long: `pageutil runs alongside a web front end. It keeps a registry of pending
page operations that browser automation polls to know when a page is idle,
and serves the localized string catalog with {$a} placeholder substitution.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(os.Stderr, verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
