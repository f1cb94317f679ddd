package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/PolarWolf314/buildenv/internal/utils"
	"github.com/google/uuid"
)

// TimestampFormat is RFC3339 in UTC with microseconds.
const TimestampFormat = "2006-01-02T15:04:05.000000Z"

// Operation names recorded in the log.
const (
	OpGenerate = "generate"
	OpBuild    = "build"
	OpDecrypt  = "decrypt"
	OpLoad     = "load"
)

// Entry represents a single audit log entry.
type Entry struct {
	ID        string `json:"id"`   // Random UUID, unique per entry.
	Timestamp string `json:"ts"`   // RFC3339 with microseconds.
	User      string `json:"user"` // OS user performing the action.
	Host      string `json:"host,omitempty"`
	Operation string `json:"op"` // Operation name.

	// Optional fields depending on operation.
	Files       []string `json:"files,omitempty"`       // Inputs for build.
	Output      string   `json:"output,omitempty"`      // Output location for build and generate.
	Source      string   `json:"source,omitempty"`      // Envelope location for decrypt and load.
	Fingerprint string   `json:"fingerprint,omitempty"` // Public key fingerprint.
	KeysCount   int      `json:"keys_count,omitempty"`  // Keys recovered by load.
}

// NewEntry returns an entry for op with the ID, user and host filled in.
func NewEntry(op string) Entry {
	entry := Entry{
		ID:        uuid.NewString(),
		Operation: op,
	}

	if username, err := utils.GetUsername(); err == nil {
		entry.User = username
	}
	if hostname, err := utils.GetHostname(); err == nil {
		entry.Host = hostname
	}

	return entry
}

// Log appends an entry to the audit log at path, creating the file and its directory.
// An empty path disables auditing. Callers should warn on error rather than fail:
// operations should not fail just because audit logging failed.
func Log(path string, entry Entry) error {
	if path == "" {
		return nil
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(TimestampFormat)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode audit entry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create audit log directory: %w", err)
	}

	// #nosec G302 -- audit log should be readable by team members.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	// A single write keeps concurrent appends from interleaving within a line.
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// ReadEntries reads all entries from the audit log at path.
// Returns an empty slice if the log doesn't exist.
func ReadEntries(path string) ([]Entry, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				// Skip malformed entries.
				continue
			}
			if entry.Operation == "" {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

// ParseTimestamp parses an entry timestamp. Plain RFC3339 is accepted for
// entries written by hand or by other tools.
func ParseTimestamp(ts string) (time.Time, error) {
	t, err := time.Parse(TimestampFormat, ts)
	if err != nil {
		t, err = time.Parse(time.RFC3339, ts)
	}
	return t, err
}

// Query selects entries from the log. Zero fields match everything.
type Query struct {
	// User matches the entry user, ignoring case.
	User string

	// Operations matches any of the listed operations, ignoring case.
	Operations []string

	// Since and Until bound the entry time, inclusive. Entries with an
	// unparseable timestamp never match a time bound.
	Since time.Time
	Until time.Time

	// Limit keeps only the most recent matches. 0 means no limit.
	Limit int

	// Reverse returns the most recent entry first.
	Reverse bool
}

// Apply returns the entries matched by q. entries is not modified.
func (q Query) Apply(entries []Entry) []Entry {
	var matched []Entry
	for _, e := range entries {
		if q.matches(e) {
			matched = append(matched, e)
		}
	}

	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[len(matched)-q.Limit:]
	}

	if q.Reverse {
		slices.Reverse(matched)
	}
	return matched
}

func (q Query) matches(e Entry) bool {
	if q.User != "" && !strings.EqualFold(e.User, q.User) {
		return false
	}

	if len(q.Operations) > 0 && !slices.ContainsFunc(q.Operations, func(op string) bool {
		return strings.EqualFold(op, e.Operation)
	}) {
		return false
	}

	if q.Since.IsZero() && q.Until.IsZero() {
		return true
	}
	t, err := ParseTimestamp(e.Timestamp)
	if err != nil {
		return false
	}
	if !q.Since.IsZero() && t.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && t.After(q.Until) {
		return false
	}
	return true
}

// Filter returns the entries whose operation is op. An empty op matches everything.
func Filter(entries []Entry, op string) []Entry {
	if op == "" {
		return entries
	}
	return Query{Operations: []string{op}}.Apply(entries)
}
