package cmd

import (
	logger "github.com/PolarWolf314/buildenv/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Helper functions for testing

// ResetGlobalState resets all flag variables and the logger to their defaults.
// Commands are package-level, so tests that execute RootCmd more than once need this.
func ResetGlobalState() {
	verbose = false
	debug = false
	Logger = logger.Logger{}

	resetInitCommandState()
	resetGenerateCommandState()
	resetBuildCommandState()
	resetDecryptCommandState()
	resetGetCommandState()
	resetShowCommandState()
	resetLogCommandState()
	resetDoctorCommandState()

	resetFlags(RootCmd)
}

// resetFlags clears the Changed marker of every flag below c so that
// cmd.Flags().Changed reflects only the next execution.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// SetDoctorExitFunc sets the exit function for testing purposes.
func SetDoctorExitFunc(f func(int)) {
	doctorExitFunc = f
}
