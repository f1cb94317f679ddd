package workflows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PolarWolf314/buildenv/internal/configs"
	kerrors "github.com/PolarWolf314/buildenv/internal/errors"
	"github.com/PolarWolf314/buildenv/internal/secrets"
	"github.com/PolarWolf314/buildenv/internal/storage"
	"github.com/PolarWolf314/buildenv/internal/utils"
)

// CheckStatus represents the result status of a health check.
type CheckStatus int

const (
	// CheckPass means the check passed.
	CheckPass CheckStatus = iota
	// CheckWarning means the check found a non-critical issue.
	CheckWarning
	// CheckError means the check found a critical issue.
	CheckError
)

// String returns a string representation of CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "pass"
	case CheckWarning:
		return "warning"
	case CheckError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for CheckStatus.
func (s CheckStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// CheckResult holds the result of a single health check.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// DoctorResult holds the complete result of the doctor workflow.
type DoctorResult struct {
	Checks      []CheckResult `json:"checks"`
	Summary     DoctorSummary `json:"summary"`
	Suggestions []string      `json:"suggestions,omitempty"`
}

// DoctorSummary holds counts of checks by status.
type DoctorSummary struct {
	Passed   int `json:"passed"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// DoctorOptions configures the doctor workflow.
type DoctorOptions struct {
	// Dir is where the project search starts. Defaults to the working directory.
	Dir string
}

// doctorState is shared by the checks of one doctor run.
type doctorState struct {
	ctx      context.Context
	settings *configs.Settings
	opts     storage.Options

	// Set by checkPrivateKey for the checks after it.
	privateKey *secrets.PrivateKey
}

// Doctor runs health checks on the buildenv project.
//
// The doctor workflow checks:
//   - Project configuration validity
//   - Private key presence, format and permissions
//   - Public key format and that it matches the private key
//   - Gitignore configuration for the private key and plaintext inputs
//   - Inputs without an envelope
//   - The configured source envelope can be opened
func Doctor(ctx context.Context, opts DoctorOptions) (*DoctorResult, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	settings, err := configs.Load(dir)
	if err != nil {
		result := CheckResult{
			Name:       "Project configuration",
			Status:     CheckError,
			Message:    fmt.Sprintf("Failed to load configuration: %v", err),
			Suggestion: "Check buildenv.toml and BUILDENV_* variables for mistakes",
		}
		return newDoctorResult([]CheckResult{result}), nil
	}

	state := &doctorState{
		ctx:      ctx,
		settings: settings,
		opts:     storageOptions(settings, nil),
	}

	checks := []func(*doctorState) CheckResult{
		checkProjectConfig,
		checkPrivateKey,
		checkPrivateKeyPermissions,
		checkPublicKey,
		checkGitignore,
		checkUnencryptedFiles,
		checkSourceEnvelope,
	}

	var results []CheckResult
	for _, check := range checks {
		results = append(results, check(state))
	}

	return newDoctorResult(results), nil
}

func newDoctorResult(results []CheckResult) *DoctorResult {
	// Collect suggestions (deduplicated).
	var suggestions []string
	seen := make(map[string]bool)
	for _, result := range results {
		if result.Suggestion != "" && result.Status != CheckPass && !seen[result.Suggestion] {
			suggestions = append(suggestions, result.Suggestion)
			seen[result.Suggestion] = true
		}
	}

	return &DoctorResult{
		Checks:      results,
		Summary:     calculateDoctorSummary(results),
		Suggestions: suggestions,
	}
}

// checkProjectConfig checks that a buildenv.toml was found.
func checkProjectConfig(s *doctorState) CheckResult {
	if !configs.Exists(s.settings.ProjectRoot) {
		return CheckResult{
			Name:       "Project configuration",
			Status:     CheckWarning,
			Message:    "No buildenv.toml found, using defaults",
			Suggestion: "Run 'buildenv init' to create a buildenv.toml",
		}
	}

	return CheckResult{
		Name:    "Project configuration",
		Status:  CheckPass,
		Message: fmt.Sprintf("Project configuration valid (%s)", s.settings.ProjectRoot),
	}
}

// checkPrivateKey checks that a private key is available and parses.
func checkPrivateKey(s *doctorState) CheckResult {
	key, err := loadPrivateKey(s.ctx, nil, s.settings, s.opts)
	if errors.Is(err, kerrors.ErrKeyNotSet) {
		return CheckResult{
			Name:       "Private key",
			Status:     CheckWarning,
			Message:    "No private key available (only needed to decrypt)",
			Suggestion: "Run 'buildenv generate' or set BUILDENV_PRIVATE_KEY",
		}
	}
	if err != nil {
		return CheckResult{
			Name:       "Private key",
			Status:     CheckError,
			Message:    fmt.Sprintf("Private key is unusable: %v", err),
			Suggestion: "Regenerate the key pair with 'buildenv generate --force'",
		}
	}

	s.privateKey = key
	source := s.settings.PrivateKeyPath
	if s.settings.PrivateKey != "" {
		source = configs.EnvPrefix + "PRIVATE_KEY"
	}
	return CheckResult{
		Name:    "Private key",
		Status:  CheckPass,
		Message: fmt.Sprintf("Private key loaded from %s", source),
	}
}

// checkPrivateKeyPermissions checks if the private key file has secure permissions.
func checkPrivateKeyPermissions(s *doctorState) CheckResult {
	privateKeyPath := s.settings.PrivateKeyPath
	if utils.HasScheme(privateKeyPath) {
		return CheckResult{
			Name:    "Private key permissions",
			Status:  CheckPass,
			Message: "Private key is not a local file (skipping permissions check)",
		}
	}

	info, err := os.Stat(privateKeyPath)
	if os.IsNotExist(err) {
		return CheckResult{
			Name:    "Private key permissions",
			Status:  CheckPass,
			Message: "No private key file (skipping permissions check)",
		}
	}
	if err != nil {
		return CheckResult{
			Name:       "Private key permissions",
			Status:     CheckError,
			Message:    fmt.Sprintf("Failed to stat private key: %v", err),
			Suggestion: "Check that the private key file is accessible",
		}
	}

	// Check permissions (should be 0600).
	mode := info.Mode().Perm()
	if mode&0077 != 0 {
		return CheckResult{
			Name:       "Private key permissions",
			Status:     CheckWarning,
			Message:    fmt.Sprintf("Private key has insecure permissions (%04o)", mode),
			Suggestion: fmt.Sprintf("Run 'chmod 600 %s' to fix permissions", privateKeyPath),
		}
	}

	return CheckResult{
		Name:    "Private key permissions",
		Status:  CheckPass,
		Message: fmt.Sprintf("Private key has correct permissions (%04o)", mode),
	}
}

// checkPublicKey checks that the public key parses and belongs to the private key.
func checkPublicKey(s *doctorState) CheckResult {
	pub, err := loadPublicKey(s.ctx, s.settings.PublicKeyPath, s.opts)
	if errors.Is(err, kerrors.ErrResourceNotFound) {
		return CheckResult{
			Name:       "Public key",
			Status:     CheckError,
			Message:    fmt.Sprintf("Public key not found at %s", s.settings.PublicKeyPath),
			Suggestion: "Run 'buildenv generate' to create a key pair",
		}
	}
	if err != nil {
		return CheckResult{
			Name:       "Public key",
			Status:     CheckError,
			Message:    fmt.Sprintf("Public key is unusable: %v", err),
			Suggestion: "Regenerate the key pair with 'buildenv generate --force'",
		}
	}

	if s.privateKey != nil && fingerprint(s.privateKey.Public()) != fingerprint(pub) {
		return CheckResult{
			Name:       "Public key",
			Status:     CheckError,
			Message:    "Public key does not match the private key",
			Suggestion: "Use the public key generated together with your private key",
		}
	}

	return CheckResult{
		Name:    "Public key",
		Status:  CheckPass,
		Message: fmt.Sprintf("Public key valid (%s)", fingerprint(pub)),
	}
}

// checkGitignore checks that the private key and plaintext inputs are ignored by git.
func checkGitignore(s *doctorState) CheckResult {
	gitignorePath := filepath.Join(s.settings.ProjectRoot, ".gitignore")

	content, err := os.ReadFile(gitignorePath)
	if os.IsNotExist(err) {
		return CheckResult{
			Name:       "Gitignore configuration",
			Status:     CheckWarning,
			Message:    "No .gitignore file found",
			Suggestion: "Run 'buildenv init' or add the private key and *.env files to .gitignore",
		}
	}
	if err != nil {
		return CheckResult{
			Name:       "Gitignore configuration",
			Status:     CheckError,
			Message:    fmt.Sprintf("Failed to read .gitignore: %v", err),
			Suggestion: "Check that the .gitignore file is accessible",
		}
	}

	keyName := filepath.Base(s.settings.PrivateKeyPath)
	hasKeyPattern := false
	hasEnvPattern := false
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.TrimPrefix(line, "/") == keyName || strings.HasSuffix(line, "/"+keyName) {
			hasKeyPattern = true
		}
		if strings.Contains(line, ".env") {
			hasEnvPattern = true
		}
	}

	if !hasKeyPattern {
		return CheckResult{
			Name:       "Gitignore configuration",
			Status:     CheckError,
			Message:    fmt.Sprintf("Private key %s is not in .gitignore", keyName),
			Suggestion: fmt.Sprintf("Add %s to .gitignore", keyName),
		}
	}
	if !hasEnvPattern {
		return CheckResult{
			Name:       "Gitignore configuration",
			Status:     CheckWarning,
			Message:    "No .env patterns found in .gitignore",
			Suggestion: "Add your plaintext inputs (e.g. build.env) to .gitignore",
		}
	}

	return CheckResult{
		Name:    "Gitignore configuration",
		Status:  CheckPass,
		Message: "Private key and .env patterns found in .gitignore",
	}
}

// checkUnencryptedFiles checks for inputs without an envelope in a local output directory.
func checkUnencryptedFiles(s *doctorState) CheckResult {
	inputs, err := utils.ResolveFiles(s.settings.Input, s.settings.ProjectRoot)
	if errors.Is(err, kerrors.ErrNoFilesFound) || errors.Is(err, kerrors.ErrFileNotFound) {
		return CheckResult{
			Name:    "Unencrypted files",
			Status:  CheckPass,
			Message: "No plaintext inputs present",
		}
	}
	if err != nil {
		return CheckResult{
			Name:       "Unencrypted files",
			Status:     CheckError,
			Message:    fmt.Sprintf("Failed to resolve inputs: %v", err),
			Suggestion: "Check the input patterns in buildenv.toml",
		}
	}

	if utils.HasScheme(s.settings.Output) {
		return CheckResult{
			Name:    "Unencrypted files",
			Status:  CheckPass,
			Message: "Output is remote (skipping envelope check)",
		}
	}

	names := envelopeNames(inputs, s.settings.ProjectRoot)
	var stale []string
	for i, input := range inputs {
		inputInfo, err := os.Stat(input)
		if err != nil {
			continue
		}
		envelopeInfo, err := os.Stat(filepath.Join(s.settings.Output, filepath.FromSlash(names[i])))
		if err != nil || envelopeInfo.ModTime().Before(inputInfo.ModTime()) {
			stale = append(stale, relativeTo(s.settings.ProjectRoot, input))
		}
	}

	if len(stale) > 0 {
		return CheckResult{
			Name:       "Unencrypted files",
			Status:     CheckWarning,
			Message:    fmt.Sprintf("Found %d input(s) without an up to date envelope: %s", len(stale), strings.Join(stale, ", ")),
			Suggestion: "Run 'buildenv build' to encrypt changed inputs",
		}
	}

	return CheckResult{
		Name:    "Unencrypted files",
		Status:  CheckPass,
		Message: "All inputs have up to date envelopes",
	}
}

// checkSourceEnvelope checks that the source envelope can be fetched and opened.
func checkSourceEnvelope(s *doctorState) CheckResult {
	data, err := readLocation(s.ctx, s.settings.Source, s.opts)
	if errors.Is(err, kerrors.ErrResourceNotFound) {
		return CheckResult{
			Name:       "Source envelope",
			Status:     CheckWarning,
			Message:    fmt.Sprintf("No envelope at %s", s.settings.Source),
			Suggestion: "Run 'buildenv build' or point source at the published envelope",
		}
	}
	if err != nil {
		return CheckResult{
			Name:       "Source envelope",
			Status:     CheckError,
			Message:    fmt.Sprintf("Failed to read %s: %v", s.settings.Source, err),
			Suggestion: "Check the source location and your network or S3 access",
		}
	}

	envelope, err := secrets.ParseEnvelope(data)
	if err != nil {
		return CheckResult{
			Name:       "Source envelope",
			Status:     CheckError,
			Message:    fmt.Sprintf("Envelope at %s is malformed", s.settings.Source),
			Suggestion: "Rebuild the envelope with 'buildenv build'",
		}
	}

	if s.privateKey == nil {
		return CheckResult{
			Name:    "Source envelope",
			Status:  CheckPass,
			Message: "Envelope is well formed (no private key to test decryption)",
		}
	}

	if _, err := secrets.Decrypt(envelope, s.privateKey); err != nil {
		return CheckResult{
			Name:       "Source envelope",
			Status:     CheckError,
			Message:    "Envelope cannot be decrypted with the private key",
			Suggestion: "Rebuild the envelope with the matching public key",
		}
	}

	return CheckResult{
		Name:    "Source envelope",
		Status:  CheckPass,
		Message: "Envelope decrypts with the private key",
	}
}

// calculateDoctorSummary calculates the counts of checks by status.
func calculateDoctorSummary(results []CheckResult) DoctorSummary {
	var summary DoctorSummary
	for _, result := range results {
		switch result.Status {
		case CheckPass:
			summary.Passed++
		case CheckWarning:
			summary.Warnings++
		case CheckError:
			summary.Errors++
		}
	}
	return summary
}
