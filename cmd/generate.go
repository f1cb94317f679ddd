package cmd

import (
	"github.com/PolarWolf314/buildenv/internal/configs"
	"github.com/PolarWolf314/buildenv/internal/ui"
	"github.com/PolarWolf314/buildenv/internal/workflows"
	"github.com/spf13/cobra"
)

var generateForce bool

func init() {
	generateCmd.Flags().BoolVarP(&generateForce, "force", "f", false, "replace an existing key pair")
}

func resetGenerateCommandState() {
	generateForce = false
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new RSA key pair",
	Long: `Generates a 2048-bit RSA key pair.

The private key is written as base64 PKCS#1 DER with mode 0600 and must stay
secret. The public key is written as PEM and can be committed.

Replacing a key pair with --force makes existing envelopes unreadable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting generate command")
		spinner, cleanup := startSpinner("Generating key pair...", verbose)
		defer cleanup()

		result, err := workflows.Generate(cmd.Context(), workflows.GenerateOptions{
			Force:  generateForce,
			Logger: &Logger,
		})
		if err != nil {
			return fail(spinner, err)
		}

		verb := "created"
		if result.Overwrote {
			verb = "replaced"
		}

		spinner.FinalMSG = ui.CheckMark() + " Key pair " + verb + "\n" +
			"    private key: " + ui.Path.Sprint(result.PrivateKeyPath) + "\n" +
			"    public key:  " + ui.Path.Sprint(result.PublicKeyPath) + "\n" +
			"    fingerprint: " + ui.Highlight.Sprint(result.Fingerprint) + "\n" +
			ui.Warning.Sprint("Warning: ") + "Never commit the private key\n" +
			ui.Arrow() + " Provide it at run time with " +
			ui.Code.Sprint("export "+configs.EnvPrefix+"PRIVATE_KEY=\"$(cat "+result.PrivateKeyPath+")\"")
		return nil
	},
}
