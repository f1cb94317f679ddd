package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/PolarWolf314/buildenv/internal/configs"
	kerrors "github.com/PolarWolf314/buildenv/internal/errors"
	"github.com/PolarWolf314/buildenv/internal/ui"
	"github.com/PolarWolf314/buildenv/internal/utils"
	"github.com/briandowns/spinner"
)

// reportedError marks an error whose message was already shown through a spinner's final message.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// startSpinner creates and starts a spinner with the given message.
// The spinner only animates on a terminal and never in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	animate := !verbose && !debug && utils.IsStderrTerminal()
	if animate {
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("%s", message)
	}

	cleanup := func() {
		if animate {
			log.SetOutput(os.Stderr)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if animate {
			s.Stop()
		}

		// Final messages go to stderr so stdout carries only command output.
		if finalMsg != "" {
			fmt.Fprint(os.Stderr, finalMsg)
		}
	}

	return s, cleanup
}

// fail shows err as the spinner's final message and returns it marked as reported.
func fail(s *spinner.Spinner, err error) error {
	Logger.Errorf("%v", err)
	s.FinalMSG = formatError(err)
	return &reportedError{err: err}
}

// formatError formats an error for display to the user.
func formatError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrProjectAlreadyInitialized):
		return ui.CrossMark() + " buildenv has already been initialized here\n" +
			ui.Arrow() + " Edit " + ui.Path.Sprint(utils.ProjectFileName) + " to change settings"

	case errors.Is(err, kerrors.ErrKeyExists):
		return ui.CrossMark() + " A key pair already exists\n" +
			ui.Arrow() + " Run " + ui.Code.Sprint("buildenv generate --force") + " to replace it. Existing envelopes become unreadable"

	case errors.Is(err, kerrors.ErrKeyNotSet):
		return ui.CrossMark() + " No private key available\n" +
			ui.Arrow() + " Set " + ui.Code.Sprint(configs.EnvPrefix+"PRIVATE_KEY") + ", pipe it with " +
			ui.Flag.Sprint("--private-key-stdin") + " or run " + ui.Code.Sprint("buildenv generate")

	case errors.Is(err, kerrors.ErrDecryptFailed):
		return ui.CrossMark() + " Cannot recover configuration\n" +
			ui.Arrow() + " The private key does not match, or the envelope was modified"

	case errors.Is(err, kerrors.ErrMalformedEnvelope):
		return ui.CrossMark() + " The envelope is malformed\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrInvalidKeyFormat):
		return ui.CrossMark() + " Invalid key\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrInvalidEncoding):
		return ui.CrossMark() + " Configuration files must be UTF-8 text\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrNoFilesFound), errors.Is(err, kerrors.ErrFileNotFound):
		return ui.CrossMark() + " No input files found\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrResourceNotFound):
		return ui.CrossMark() + " Not found\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrUnsupportedLocation), errors.Is(err, kerrors.ErrReadOnlyStorage):
		return ui.CrossMark() + " Unusable storage location\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrKeyNotFound):
		return ui.CrossMark() + " " + err.Error()

	case errors.Is(err, kerrors.ErrInvalidDateFormat):
		return ui.CrossMark() + " " + err.Error()

	default:
		return ui.CrossMark() + " " + err.Error()
	}
}

// readPrivateKeyFromStdin reads the private key piped to the command, if requested.
func readPrivateKeyFromStdin(enabled bool) ([]byte, error) {
	if !enabled {
		return nil, nil
	}
	Logger.Debugf("Reading private key from stdin")
	return utils.ReadStdin()
}
