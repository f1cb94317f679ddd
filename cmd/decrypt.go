package cmd

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/buildenv/internal/ui"
	"github.com/PolarWolf314/buildenv/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	decryptPrivateKeyStdin bool
	decryptOut             string
)

func init() {
	decryptCmd.Flags().BoolVar(&decryptPrivateKeyStdin, "private-key-stdin", false, "read the private key from stdin")
	decryptCmd.Flags().StringVar(&decryptOut, "out", "", "write the plaintext to this file (mode 0600) instead of stdout")
}

func resetDecryptCommandState() {
	decryptPrivateKeyStdin = false
	decryptOut = ""
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt [source]",
	Short: "Decrypt an envelope and print the configuration",
	Long: `Decrypts the envelope at source and prints the original configuration text.

The source defaults to the source setting in buildenv.toml and may be a file,
an https:// URL or an s3:// object. The private key comes from, in order:
--private-key-stdin, BUILDENV_PRIVATE_KEY, then the private key file.

Examples:
  buildenv decrypt
  buildenv decrypt https://example.com/build.env.json
  cat private_key | buildenv decrypt --private-key-stdin --out .env`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting decrypt command")
		spinner, cleanup := startSpinner("Decrypting envelope...", verbose)
		defer cleanup()

		keyData, err := readPrivateKeyFromStdin(decryptPrivateKeyStdin)
		if err != nil {
			return fail(spinner, err)
		}

		opts := workflows.DecryptOptions{
			PrivateKeyData: keyData,
			Logger:         &Logger,
		}
		if len(args) == 1 {
			opts.Source = args[0]
		}

		result, err := workflows.Decrypt(cmd.Context(), opts)
		if err != nil {
			return fail(spinner, err)
		}

		if decryptOut == "" {
			fmt.Print(result.Plaintext)
			return nil
		}

		if err := os.WriteFile(decryptOut, []byte(result.Plaintext), 0600); err != nil {
			return fail(spinner, fmt.Errorf("writing %s: %w", decryptOut, err))
		}
		spinner.FinalMSG = ui.CheckMark() + " Decrypted " + ui.Path.Sprint(result.Source) + " into " + ui.Path.Sprint(decryptOut)
		return nil
	},
}
