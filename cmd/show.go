package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/PolarWolf314/buildenv/internal/ui"
	"github.com/spf13/cobra"
)

var (
	showSource          string
	showReveal          bool
	showJSON            bool
	showPrivateKeyStdin bool
)

func init() {
	showCmd.Flags().StringVar(&showSource, "source", "", "envelope location (defaults to the configured source)")
	showCmd.Flags().BoolVar(&showReveal, "reveal", false, "print values in clear text")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "output as a JSON object")
	showCmd.Flags().BoolVar(&showPrivateKeyStdin, "private-key-stdin", false, "read the private key from stdin")
}

func resetShowCommandState() {
	showSource = ""
	showReveal = false
	showJSON = false
	showPrivateKeyStdin = false
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "List the keys in the configuration",
	Long: `Loads the configuration from the envelope and lists every key in file order.

Values are masked unless --reveal is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting show command")
		spinner, cleanup := startSpinner("Loading configuration...", verbose)
		defer cleanup()

		store, err := loadStore(cmd.Context(), showSource, showPrivateKeyStdin)
		if err != nil {
			return fail(spinner, err)
		}

		mapping := store.Snapshot()
		display := func(v string) string {
			if showReveal {
				return v
			}
			return ui.MaskValue(v)
		}

		if showJSON {
			values := make(map[string]string, mapping.Len())
			for _, key := range mapping.Keys() {
				v, _ := mapping.Lookup(key)
				values[key] = display(v)
			}
			data, err := json.MarshalIndent(values, "", "  ")
			if err != nil {
				return fail(spinner, fmt.Errorf("failed to marshal configuration to JSON: %w", err))
			}
			fmt.Println(string(data))
			return nil
		}

		if mapping.Len() == 0 {
			spinner.FinalMSG = ui.Warning.Sprint("⚠") + " The configuration is empty"
			return nil
		}

		for _, key := range mapping.Keys() {
			v, _ := mapping.Lookup(key)
			fmt.Printf("%s=%s\n", ui.Key.Sprint(key), display(v))
		}
		return nil
	},
}
