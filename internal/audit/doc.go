// Package audit records buildenv operations in a JSON Lines log.
//
// Key generation, builds, decryption and loads each append one entry to the
// project's audit log, .buildenv/audit.jsonl by default:
//
//	{"id":"5f0c...","ts":"2026-01-02T03:04:05.000006Z","user":"alice","op":"build","files":["build.env"],"output":"public","fingerprint":"SHA256:..."}
//
// # Usage
//
// Create an entry with user info pre-populated:
//
//	entry := audit.NewEntry(audit.OpBuild)
//	entry.Files = inputs
//	if err := audit.Log(settings.AuditLog, entry); err != nil {
//		log.Warnf("audit log: %v", err)
//	}
//
// # Failure Handling
//
// Audit logging is best-effort. Callers warn and carry on when Log fails.
// Plaintext values never appear in the log.
//
// # Reading Logs
//
// Use ReadEntries() to parse the audit log for display or analysis.
// Malformed entries are silently skipped to handle partial writes.
package audit
