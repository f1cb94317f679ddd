package workflows

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/PolarWolf314/buildenv/internal/audit"
	"github.com/PolarWolf314/buildenv/internal/configs"
	kerrors "github.com/PolarWolf314/buildenv/internal/errors"
)

// LogOptions configures the log workflow.
type LogOptions struct {
	// Settings locate the audit log. If nil, settings are loaded from the working directory.
	Settings *configs.Settings

	// Limit is the maximum number of entries to return. 0 means no limit.
	Limit int

	// Reverse orders entries from most recent to oldest when true.
	Reverse bool

	// User filters entries by OS user name.
	User string

	// Operations filters entries by operation types (comma-separated).
	Operations string

	// Since filters entries after this date (YYYY-MM-DD format).
	Since string

	// Until filters entries before this date (YYYY-MM-DD format).
	Until string
}

// LogResult contains the outcome of a log operation.
type LogResult struct {
	// Entries are the filtered audit log entries.
	Entries []audit.Entry

	// TotalEntriesBeforeFilter is the count of entries before filtering.
	TotalEntriesBeforeFilter int

	// Path is the audit log that was read.
	Path string
}

// Log reads and filters the audit log.
//
// Returns ErrFileNotFound if auditing is disabled or no audit log exists.
// Returns ErrInvalidDateFormat if the date format is invalid.
func Log(ctx context.Context, opts LogOptions) (*LogResult, error) {
	settings, err := settingsOrDefault(opts.Settings)
	if err != nil {
		return nil, err
	}

	logPath := settings.AuditLog
	if logPath == "" {
		return nil, fmt.Errorf("%w: audit logging is disabled", kerrors.ErrFileNotFound)
	}

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: no audit log at %s", kerrors.ErrFileNotFound, logPath)
	}

	entries, err := audit.ReadEntries(logPath)
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}

	result := &LogResult{
		TotalEntriesBeforeFilter: len(entries),
		Path:                     logPath,
	}

	query, err := opts.query()
	if err != nil {
		return nil, err
	}

	result.Entries = query.Apply(entries)
	return result, nil
}

// query translates the command line filters into an audit query.
func (opts LogOptions) query() (audit.Query, error) {
	q := audit.Query{
		User:    opts.User,
		Limit:   opts.Limit,
		Reverse: opts.Reverse,
	}

	for _, op := range strings.Split(opts.Operations, ",") {
		if op = strings.TrimSpace(op); op != "" {
			q.Operations = append(q.Operations, op)
		}
	}

	if opts.Since != "" {
		since, err := time.Parse(dateFormat, opts.Since)
		if err != nil {
			return q, fmt.Errorf("%w: --since date format invalid, use YYYY-MM-DD", kerrors.ErrInvalidDateFormat)
		}
		q.Since = since
	}

	if opts.Until != "" {
		until, err := time.Parse(dateFormat, opts.Until)
		if err != nil {
			return q, fmt.Errorf("%w: --until date format invalid, use YYYY-MM-DD", kerrors.ErrInvalidDateFormat)
		}
		// Until covers the whole day.
		q.Until = until.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	return q, nil
}

const dateFormat = "2006-01-02"

// FormatDate formats a timestamp string to YYYY-MM-DD format.
func FormatDate(ts string) string {
	t, err := audit.ParseTimestamp(ts)
	if err != nil {
		if len(ts) >= 10 {
			return ts[:10]
		}
		return ts
	}
	return t.Format(dateFormat)
}

// FormatDateTime formats a timestamp string to YYYY-MM-DD HH:MM:SS format.
func FormatDateTime(ts string) string {
	t, err := audit.ParseTimestamp(ts)
	if err != nil {
		if len(ts) >= 19 {
			return ts[:19]
		}
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

// FormatDetails formats the details for a log entry in verbose format.
func FormatDetails(e audit.Entry) string {
	switch e.Operation {
	case audit.OpBuild:
		var files string
		if len(e.Files) > 3 {
			files = fmt.Sprintf("%d files", len(e.Files))
		} else {
			files = strings.Join(e.Files, ", ")
		}
		if e.Output == "" {
			return files
		}
		return fmt.Sprintf("%s -> %s", files, e.Output)
	case audit.OpDecrypt:
		return e.Source
	case audit.OpLoad:
		return fmt.Sprintf("%s (%d keys)", e.Source, e.KeysCount)
	case audit.OpGenerate:
		return e.Fingerprint
	default:
		return ""
	}
}

// FormatDetailsOneline formats the details for a log entry in oneline format.
func FormatDetailsOneline(e audit.Entry) string {
	switch e.Operation {
	case audit.OpBuild:
		if len(e.Files) == 0 {
			return ""
		}
		return fmt.Sprintf("%d files", len(e.Files))
	case audit.OpDecrypt:
		return e.Source
	case audit.OpLoad:
		return fmt.Sprintf("%d keys", e.KeysCount)
	case audit.OpGenerate:
		return e.Fingerprint
	default:
		return ""
	}
}
