package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	logger "github.com/PolarWolf314/buildenv/internal/logging"
	"github.com/PolarWolf314/buildenv/internal/ui"
	figure "github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger

	RootCmd = &cobra.Command{
		Use:   "buildenv",
		Short: "Encrypt build-time configuration and load it back at run time",
		Long: `buildenv seals KEY=VALUE configuration files into envelopes that can be
published next to your build output, and opens them again wherever the
private key is available.

Envelopes are encrypted with a fresh AES-256-GCM key per file. That key is
wrapped with your RSA public key, so anyone can build but only holders of
the private key can read.

Typical flow:
  buildenv init        # write buildenv.toml and update .gitignore
  buildenv generate    # create private_key and public_key.pem
  buildenv build       # encrypt build.env into public/build.env.json
  buildenv get DB_HOST # decrypt and print one value`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing %s command with verbose=%t, debug=%t", cmd.Name(), verbose, debug)
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print(figure.NewFigure("buildenv", "", true).String())
			fmt.Println()
			fmt.Println("Run " + ui.Code.Sprint("buildenv --help") + " to see available commands.")
		},
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	RootCmd.AddCommand(initCmd)
	RootCmd.AddCommand(generateCmd)
	RootCmd.AddCommand(buildCmd)
	RootCmd.AddCommand(decryptCmd)
	RootCmd.AddCommand(getCmd)
	RootCmd.AddCommand(showCmd)
	RootCmd.AddCommand(logCmd)
	RootCmd.AddCommand(doctorCmd)
}

// Execute runs the CLI and returns the process exit code.
// Errors already shown to the user by a command are not printed again.
func Execute(ctx context.Context) int {
	if err := RootCmd.ExecuteContext(ctx); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, ui.Error.Sprint("Error:")+" "+err.Error())
		}
		return 1
	}
	return 0
}
