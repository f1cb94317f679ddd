package envconfig

import "strings"

// Parse turns KEY=VALUE text into a Mapping.
//
// Lines are split on "\n". Empty lines, lines starting with '#', and lines
// without '=' are skipped without error. The first '=' separates key from
// value and both are trimmed of surrounding whitespace. A later declaration
// of the same key overwrites the earlier one. There is no quoting, escaping,
// inline comment or multi-line value support.
func Parse(text string) *Mapping {
	m := newMapping()

	for _, line := range strings.Split(text, "\n") {
		if line == "" || line[0] == '#' {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx == -1 {
			continue
		}

		// Empty keys are skipped by set.
		m.set(strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]))
	}

	return m
}
