package cmd

import (
	"fmt"

	"github.com/PolarWolf314/buildenv/internal/ui"
	"github.com/PolarWolf314/buildenv/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	buildOutput    string
	buildPublicKey string
	buildDryRun    bool
)

func init() {
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "directory, https:// or s3:// prefix to write envelopes to")
	buildCmd.Flags().StringVar(&buildPublicKey, "public-key", "", "location of the public key to encrypt for")
	buildCmd.Flags().BoolVar(&buildDryRun, "dry-run", false, "show what would be encrypted without writing anything")
}

func resetBuildCommandState() {
	buildOutput = ""
	buildPublicKey = ""
	buildDryRun = false
}

var buildCmd = &cobra.Command{
	Use:   "build [files...]",
	Short: "Encrypt configuration files into envelopes",
	Long: `Encrypts each input file into <file>.json under the output location.

Inputs default to the input list in buildenv.toml. Arguments may be files,
directories or glob patterns, including ** for any depth.

Examples:
  buildenv build                         # encrypt the configured inputs
  buildenv build .env.production         # encrypt one file
  buildenv build "services/**/*.env"     # encrypt matching files
  buildenv build -o s3://bucket/config   # upload envelopes to S3
  buildenv build --dry-run               # preview`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting build command")
		spinner, cleanup := startSpinner("Encrypting configuration...", verbose)
		defer cleanup()

		result, err := workflows.Build(cmd.Context(), workflows.BuildOptions{
			FilePatterns: args,
			Output:       buildOutput,
			PublicKey:    buildPublicKey,
			DryRun:       buildDryRun,
			Logger:       &Logger,
		})
		if err != nil {
			return fail(spinner, err)
		}

		var files string
		for _, f := range result.Files {
			files += fmt.Sprintf("    - %s %s %s\n", ui.Path.Sprint(f.Input), ui.Arrow(), ui.Path.Sprint(f.Output))
		}

		if result.DryRun {
			spinner.FinalMSG = ui.Warning.Sprint("[dry-run]") + fmt.Sprintf(" Would encrypt %d file(s):\n", len(result.Files)) +
				files +
				"No changes made. " + ui.Arrow() + " Run without " + ui.Flag.Sprint("--dry-run") + " to encrypt"
			return nil
		}

		spinner.FinalMSG = ui.CheckMark() + fmt.Sprintf(" Encrypted %d file(s) for %s\n", len(result.Files), ui.Highlight.Sprint(result.Fingerprint)) +
			files +
			ui.Arrow() + " Envelopes are safe to publish"
		return nil
	},
}
