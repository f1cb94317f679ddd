package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/PolarWolf314/buildenv/internal/utils"
	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every environment override, e.g. BUILDENV_OUTPUT.
const EnvPrefix = "BUILDENV_"

// Settings holds everything the commands need to locate keys, inputs and envelopes.
type Settings struct {
	// ProjectRoot is the directory holding buildenv.toml, or the start directory when there is none.
	ProjectRoot string `toml:"-"`

	PrivateKeyPath string `toml:"private_key" env:"PRIVATE_KEY_PATH"`

	// PrivateKey carries the encoded private key itself. It is only ever read from the environment.
	PrivateKey string `toml:"-" env:"PRIVATE_KEY"`

	PublicKeyPath string   `toml:"public_key" env:"PUBLIC_KEY_PATH"`
	Input         []string `toml:"input" env:"INPUT" envSeparator:","`
	Output        string   `toml:"output" env:"OUTPUT"`
	Source        string   `toml:"source" env:"SOURCE"`

	// AuditLog is the JSON lines audit file. Empty disables auditing.
	AuditLog string `toml:"audit_log" env:"AUDIT_LOG"`

	HTTPTimeout time.Duration `toml:"http_timeout" env:"HTTP_TIMEOUT"`
	HTTPRetries int           `toml:"http_retries" env:"HTTP_RETRIES"`

	S3Region    string `toml:"s3_region,omitempty" env:"S3_REGION"`
	S3Endpoint  string `toml:"s3_endpoint,omitempty" env:"S3_ENDPOINT"`
	S3PathStyle bool   `toml:"s3_path_style,omitempty" env:"S3_PATH_STYLE"`

	// Static S3 credentials, for S3-compatible services. Environment only, like PrivateKey.
	S3AccessKeyID     string `toml:"-" env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `toml:"-" env:"S3_SECRET_ACCESS_KEY"`
}

// Defaults returns the settings used when neither buildenv.toml nor the environment say otherwise.
func Defaults() *Settings {
	return &Settings{
		PrivateKeyPath: "private_key",
		PublicKeyPath:  "public_key.pem",
		Input:          []string{"build.env"},
		Output:         "public",
		Source:         filepath.Join("public", "build.env.json"),
		AuditLog:       filepath.Join(".buildenv", "audit.jsonl"),
		HTTPTimeout:    30 * time.Second,
		HTTPRetries:    3,
	}
}

// Load builds settings for dir: defaults, then the nearest buildenv.toml, then BUILDENV_ variables.
// Relative paths are resolved against the project root.
func Load(dir string) (*Settings, error) {
	root, err := utils.FindProjectRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("error finding project root: %w", err)
	}

	settings := Defaults()

	if root != "" {
		if err := LoadTOML(filepath.Join(root, utils.ProjectFileName), settings); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", utils.ProjectFileName, err)
		}
	} else {
		root, err = filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
		}
	}

	if err := env.ParseWithOptions(settings, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if settings.HTTPRetries < 0 {
		return nil, fmt.Errorf("http_retries must not be negative, got %d", settings.HTTPRetries)
	}
	if settings.HTTPTimeout < 0 {
		return nil, fmt.Errorf("http_timeout must not be negative, got %s", settings.HTTPTimeout)
	}

	settings.ProjectRoot = root
	settings.resolvePaths()

	return settings, nil
}

// Save writes settings to buildenv.toml in dir. The private key value is never written.
func Save(dir string, settings *Settings) (string, error) {
	path := filepath.Join(dir, utils.ProjectFileName)
	if err := SaveTOML(path, settings); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", utils.ProjectFileName, err)
	}
	return path, nil
}

// Exists reports whether dir already holds a buildenv.toml.
func Exists(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, utils.ProjectFileName))
	return err == nil && !info.IsDir()
}

func (s *Settings) resolvePaths() {
	s.PrivateKeyPath = utils.ResolvePath(s.ProjectRoot, s.PrivateKeyPath)
	s.PublicKeyPath = utils.ResolvePath(s.ProjectRoot, s.PublicKeyPath)
	s.Output = utils.ResolvePath(s.ProjectRoot, s.Output)
	s.Source = utils.ResolvePath(s.ProjectRoot, s.Source)
	s.AuditLog = utils.ResolvePath(s.ProjectRoot, s.AuditLog)
}
