// Package configs loads buildenv project settings.
//
// Settings are layered, later layers winning:
//
//   - Defaults(): private_key, public_key.pem, build.env -> public/build.env.json
//   - buildenv.toml, found by walking up from the working directory
//   - BUILDENV_* environment variables
//
// The directory holding buildenv.toml is the project root. Relative paths in
// the settings are resolved against it; URLs such as s3://bucket/x or
// https://host/x are left untouched.
//
// The private key value itself can only come from BUILDENV_PRIVATE_KEY.
// It is never read from or written to buildenv.toml.
//
// # Example buildenv.toml
//
//	private_key = "private_key"
//	public_key = "public_key.pem"
//	input = ["build.env", "apps/**/build.env"]
//	output = "public"
//	source = "https://cdn.example.com/build.env.json"
//	audit_log = ".buildenv/audit.jsonl"
//	http_timeout = "30s"
//	http_retries = 3
package configs
