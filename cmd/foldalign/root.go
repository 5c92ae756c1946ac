package main

import (
	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/ndaniels/foldalign"
)

var (
	flagVerbosity  int
	flagCPUProfile bool
	flagMemProfile bool

	stopProfile func()
)

var rootCmd = &cobra.Command{
	Use:   "foldalign",
	Short: "Progressive multiple structure alignment over AA and 3Di channels",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		foldalign.Verbosity = flagVerbosity
		switch {
		case flagCPUProfile:
			stopProfile = profile.Start(profile.CPUProfile).Stop
		case flagMemProfile:
			stopProfile = profile.Start(profile.MemProfile).Stop
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if stopProfile != nil {
			stopProfile()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagVerbosity, "verbosity", 1, "logging verbosity level")
	rootCmd.PersistentFlags().BoolVar(&flagCPUProfile, "cpu-profile", false, "write a pkg/profile CPU profile for this run")
	rootCmd.PersistentFlags().BoolVar(&flagMemProfile, "mem-profile", false, "write a pkg/profile memory profile for this run")
	rootCmd.AddCommand(msaCmd)
}
