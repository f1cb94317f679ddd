package envconfig

import (
	"reflect"
	"testing"
)

func TestParse_Example(t *testing.T) {
	m := Parse("A=1\n# comment\n\nB = 2 \nNOEQUALS\nA=3")

	want := map[string]string{"A": "3", "B": "2"}
	if got := m.ToMap(); !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() = %v, want %v", got, want)
	}

	if keys := m.Keys(); !reflect.DeepEqual(keys, []string{"A", "B"}) {
		t.Errorf("Keys() = %v, want [A B]", keys)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{"Empty input", "", map[string]string{}},
		{"Only comments", "# one\n#two=2\n", map[string]string{}},
		{"Value with equals", "URL=postgres://u:p@h/db?a=b", map[string]string{"URL": "postgres://u:p@h/db?a=b"}},
		{"Empty value", "EMPTY=", map[string]string{"EMPTY": ""}},
		{"Whitespace value", "SPACES=   ", map[string]string{"SPACES": ""}},
		{"Keys are case sensitive", "key=1\nKEY=2", map[string]string{"key": "1", "KEY": "2"}},
		{"CRLF line endings", "A=1\r\nB=2\r\n", map[string]string{"A": "1", "B": "2"}},
		{"Tabs trimmed", "\tA\t=\t1\t", map[string]string{"A": "1"}},
		{"Inline hash kept in value", "COLOR=#ff0000 # red", map[string]string{"COLOR": "#ff0000 # red"}},
		{"Quotes kept", `NAME="quoted"`, map[string]string{"NAME": `"quoted"`}},
		{"Empty key skipped", "=orphan\n  =also\nA=1", map[string]string{"A": "1"}},
		{"Indented comment is not a comment", "  # x=1", map[string]string{"# x": "1"}},
		{"Export prefix is not special", "export A=1", map[string]string{"export A": "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input).ToMap()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// Lines without '=' are dropped on purpose, not reported as errors.
func TestParse_SilentlySkipsLinesWithoutEquals(t *testing.T) {
	m := Parse("JUSTAKEY\nA=1\nanother line of prose\n")

	if m.Len() != 1 {
		t.Fatalf("expected 1 key, got %d: %v", m.Len(), m.Keys())
	}
	if m.Has("JUSTAKEY") {
		t.Error("line without '=' should not produce a key")
	}
}

func TestParse_DuplicateKeepsFirstPosition(t *testing.T) {
	m := Parse("A=1\nB=2\nA=3\nC=4")

	if keys := m.Keys(); !reflect.DeepEqual(keys, []string{"A", "B", "C"}) {
		t.Errorf("Keys() = %v, want [A B C]", keys)
	}
	if v := m.Get("A", ""); v != "3" {
		t.Errorf("expected last value 3, got %q", v)
	}
}

func TestMapping_Readers(t *testing.T) {
	m := Parse("DB_HOST=localhost\nDB_PORT=5432")

	if v, ok := m.Lookup("DB_HOST"); !ok || v != "localhost" {
		t.Errorf("Lookup(DB_HOST) = %q, %v", v, ok)
	}
	if v := m.Get("MISSING", "fallback"); v != "fallback" {
		t.Errorf("Get(MISSING) = %q, want fallback", v)
	}
	if env := m.Environ(); !reflect.DeepEqual(env, []string{"DB_HOST=localhost", "DB_PORT=5432"}) {
		t.Errorf("Environ() = %v", env)
	}

	keys := m.Keys()
	keys[0] = "MUTATED"
	if m.Has("MUTATED") || m.Keys()[0] != "DB_HOST" {
		t.Error("mutating Keys() result changed the mapping")
	}

	values := m.ToMap()
	values["DB_HOST"] = "mutated"
	if m.Get("DB_HOST", "") != "localhost" {
		t.Error("mutating ToMap() result changed the mapping")
	}
}

func TestNewMapping(t *testing.T) {
	m := NewMapping(map[string]string{"B": "2", "A": "1", "": "dropped"})

	if keys := m.Keys(); !reflect.DeepEqual(keys, []string{"A", "B"}) {
		t.Errorf("Keys() = %v, want [A B]", keys)
	}
}

func TestNilMapping(t *testing.T) {
	var m *Mapping

	if m.Len() != 0 || m.Has("A") || m.Keys() != nil || m.Environ() != nil {
		t.Error("nil mapping should behave as empty")
	}
	if len(m.ToMap()) != 0 {
		t.Error("nil mapping ToMap should be empty")
	}
}
