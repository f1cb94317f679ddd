package cmd

import (
	"github.com/PolarWolf314/buildenv/internal/ui"
	"github.com/PolarWolf314/buildenv/internal/utils"
	"github.com/PolarWolf314/buildenv/internal/workflows"
	"github.com/spf13/cobra"
)

var initSkipGitignore bool

func init() {
	initCmd.Flags().BoolVar(&initSkipGitignore, "skip-gitignore", false, "do not update .gitignore")
}

func resetInitCommandState() {
	initSkipGitignore = false
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create buildenv.toml in the current directory",
	Long: `Writes a buildenv.toml with the default settings and adds the private key
and plaintext inputs to .gitignore.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting init command")
		spinner, cleanup := startSpinner("Initializing buildenv...", verbose)
		defer cleanup()

		result, err := workflows.Init(cmd.Context(), workflows.InitOptions{SkipGitignore: initSkipGitignore})
		if err != nil {
			return fail(spinner, err)
		}
		Logger.Debugf("Wrote %s", result.ConfigPath)

		finalMessage := ui.CheckMark() + " buildenv initialized\n" +
			"Created " + ui.Path.Sprint(result.ConfigPath) + "\n"
		if len(result.GitignoreAdded) > 0 {
			finalMessage += "Added to .gitignore:" + utils.FormatPaths(result.GitignoreAdded)
		}
		finalMessage += ui.Arrow() + " Run " + ui.Code.Sprint("buildenv generate") + " to create a key pair"

		spinner.FinalMSG = finalMessage
		return nil
	},
}
