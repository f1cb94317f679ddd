package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/PolarWolf314/buildenv/internal/ui"
	"github.com/PolarWolf314/buildenv/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	doctorJSONOutput bool
	// doctorExitFunc is the function called to exit with a specific code.
	// Can be overridden for testing.
	doctorExitFunc = os.Exit
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSONOutput, "json", false, "output in JSON format")
}

func resetDoctorCommandState() {
	doctorJSONOutput = false
	doctorExitFunc = os.Exit
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks on the buildenv project",
	Long: `Runs a series of health checks on the buildenv project and reports issues.

The doctor command checks:
  - Project configuration validity
  - Private key presence, format and permissions
  - Public key format and that it matches the private key
  - Gitignore configuration for the private key and .env files
  - Inputs without an up to date envelope
  - That the source envelope can be opened

Exit codes:
  0 - All checks passed
  1 - Warnings found (non-critical issues)
  2 - Errors found (critical issues)

Use --json for machine-readable output.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting doctor command")

	spinner, cleanup := startSpinner("Running health checks...", verbose)

	result, err := workflows.Doctor(cmd.Context(), workflows.DoctorOptions{})
	if err != nil {
		err = fail(spinner, err)
		cleanup()
		return err
	}

	for _, check := range result.Checks {
		Logger.Debugf("Check %s: status=%s, message=%s", check.Name, check.Status.String(), check.Message)
	}

	if doctorJSONOutput {
		cleanup()
		if err := outputDoctorJSON(result); err != nil {
			return err
		}
	} else {
		switch {
		case result.Summary.Errors > 0:
			spinner.FinalMSG = ui.CrossMark() + " Health checks completed with errors"
		case result.Summary.Warnings > 0:
			spinner.FinalMSG = ui.Warning.Sprint("⚠") + " Health checks completed with warnings"
		default:
			spinner.FinalMSG = ui.CheckMark() + " Health checks completed"
		}
		// Stop the spinner before printing the report.
		finalMsg := spinner.FinalMSG
		spinner.FinalMSG = ""
		cleanup()
		printDoctorResults(result)
		fmt.Fprintln(os.Stderr, finalMsg)
	}

	// Set exit code based on results.
	if result.Summary.Errors > 0 {
		doctorExitFunc(2)
	} else if result.Summary.Warnings > 0 {
		doctorExitFunc(1)
	}
	return nil
}

// outputDoctorJSON outputs the result as JSON.
func outputDoctorJSON(result *workflows.DoctorResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// printDoctorResults prints the doctor results in a human-readable format.
func printDoctorResults(result *workflows.DoctorResult) {
	for _, check := range result.Checks {
		var statusIcon string
		switch check.Status {
		case workflows.CheckPass:
			statusIcon = ui.CheckMark()
		case workflows.CheckWarning:
			statusIcon = ui.Warning.Sprint("⚠")
		case workflows.CheckError:
			statusIcon = ui.CrossMark()
		}
		fmt.Printf("%s %s\n", statusIcon, check.Message)
	}

	fmt.Println()
	fmt.Printf("Summary: %d passed", result.Summary.Passed)
	if result.Summary.Warnings > 0 {
		fmt.Printf(", %s", ui.Warning.Sprint(fmt.Sprintf("%d warning(s)", result.Summary.Warnings)))
	}
	if result.Summary.Errors > 0 {
		fmt.Printf(", %s", ui.Error.Sprint(fmt.Sprintf("%d error(s)", result.Summary.Errors)))
	}
	fmt.Println()

	if len(result.Suggestions) > 0 {
		fmt.Println()
		fmt.Println("Suggestions:")
		for _, suggestion := range result.Suggestions {
			fmt.Printf("  %s %s\n", ui.Arrow(), suggestion)
		}
	}
}
