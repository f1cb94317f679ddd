package utils

import (
	"regexp"
	"strings"

	"github.com/PolarWolf314/buildenv/internal/ui"
)

var schemeRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*://`)

// FormatPaths formats a slice of paths into a readable string.
func FormatPaths(paths []string) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, path := range paths {
		b.WriteString("    - ")
		b.WriteString(ui.Path.Sprint(path))
		b.WriteString("\n")
	}
	return b.String()
}

// HasScheme reports whether location looks like a URL, e.g. https://host/x or s3://bucket/key.
func HasScheme(location string) bool {
	return schemeRegex.MatchString(location)
}
