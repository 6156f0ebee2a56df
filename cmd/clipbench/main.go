package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/voslund/clipbench/internal/config"
	"github.com/voslund/clipbench/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "clipbench",
	Short: "clipbench - timeline-based video editing toolkit",
	Long:  "Trim, retime, reverse, concatenate and caption video through a segment timeline, backed by ffmpeg.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logging
		logging.Init(verbose)

		// Load config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// Store config in context
		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./clipbench.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(trimCmd)
	rootCmd.AddCommand(speedCmd)
	rootCmd.AddCommand(reverseCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(burnCmd)
	rootCmd.AddCommand(thumbsCmd)
}
