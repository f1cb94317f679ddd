package cmd

import (
	"context"
	"fmt"

	kerrors "github.com/PolarWolf314/buildenv/internal/errors"
	"github.com/PolarWolf314/buildenv/internal/envconfig"
	"github.com/PolarWolf314/buildenv/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	getSource          string
	getDefault         string
	getPrivateKeyStdin bool
)

func init() {
	getCmd.Flags().StringVar(&getSource, "source", "", "envelope location (defaults to the configured source)")
	getCmd.Flags().StringVar(&getDefault, "default", "", "value to print when the key is absent")
	getCmd.Flags().BoolVar(&getPrivateKeyStdin, "private-key-stdin", false, "read the private key from stdin")
}

func resetGetCommandState() {
	getSource = ""
	getDefault = ""
	getPrivateKeyStdin = false
}

var getCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print one configuration value",
	Long: `Loads the configuration from the envelope and prints the value of KEY.

Fails when KEY is absent unless --default is given.

Examples:
  buildenv get DB_HOST
  buildenv get LOG_LEVEL --default info
  DB_PORT=$(buildenv get DB_PORT --source https://example.com/build.env.json)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting get command")
		spinner, cleanup := startSpinner("Loading configuration...", verbose)
		defer cleanup()

		store, err := loadStore(cmd.Context(), getSource, getPrivateKeyStdin)
		if err != nil {
			return fail(spinner, err)
		}

		key := args[0]
		value, ok := store.Lookup(key)
		if !ok {
			if !cmd.Flags().Changed("default") {
				return fail(spinner, fmt.Errorf("%w: %s", kerrors.ErrKeyNotFound, key))
			}
			Logger.Debugf("Key %s not found, using default", key)
			value = getDefault
		}

		fmt.Println(value)
		return nil
	},
}

// loadStore runs the load workflow and returns the populated store.
func loadStore(ctx context.Context, source string, privateKeyStdin bool) (*envconfig.Store, error) {
	keyData, err := readPrivateKeyFromStdin(privateKeyStdin)
	if err != nil {
		return nil, err
	}

	result, err := workflows.Load(ctx, workflows.LoadOptions{
		Source:         source,
		PrivateKeyData: keyData,
		Logger:         &Logger,
	})
	if err != nil {
		return nil, err
	}

	Logger.Debugf("Loaded %d keys from %s", result.Mapping.Len(), result.Source)
	return result.Store, nil
}
