package parser

import "strings"

// FieldSet is the set of field names recognized as override fields. Names
// are compared after normalization, so "Regression_Type" and
// "Regression Type" are the same field.
type FieldSet map[string]struct{}

var defaultOverrideFields = []string{
	"Apps", "Platform", "Component/Feature", "Priority", "Status",
	"TC_requires_use_of_proxy", "Regression_Type", "Automatable?",
	"CT_Update_Target", "Evidence_Type", "Live_Proposition",
	"Users_Applied", "Automated_Proposition", "HighVisibility",
	"IsAds?", "NBA_Feature", "Folder",
}

// DefaultOverrideFields returns the built-in override field names.
func DefaultOverrideFields() FieldSet {
	return NewFieldSet(defaultOverrideFields...)
}

func NewFieldSet(names ...string) FieldSet {
	fs := FieldSet{}
	for _, n := range names {
		fs[Normalize(strings.TrimSpace(n))] = struct{}{}
	}
	return fs
}

// With returns a copy of fs extended with names.
func (fs FieldSet) With(names ...string) FieldSet {
	out := make(FieldSet, len(fs)+len(names))
	for n := range fs {
		out[n] = struct{}{}
	}
	for _, n := range names {
		out[Normalize(strings.TrimSpace(n))] = struct{}{}
	}
	return out
}

func (fs FieldSet) Contains(name string) bool {
	_, ok := fs[Normalize(name)]
	return ok
}

// Names returns the normalized field names in no particular order.
func (fs FieldSet) Names() []string {
	names := make([]string, 0, len(fs))
	for n := range fs {
		names = append(names, n)
	}
	return names
}

// Fields is a field-name to value mapping whose lookups tolerate the
// underscore and space spellings of a name.
type Fields map[string]string

// Get tries the exact name, then its underscore spelling, then its space
// spelling.
func (f Fields) Get(name string) (string, bool) {
	if v, ok := f[name]; ok {
		return v, true
	}
	if v, ok := f[strings.ReplaceAll(name, " ", "_")]; ok {
		return v, true
	}
	if v, ok := f[Normalize(name)]; ok {
		return v, true
	}
	return "", false
}

// Lookup is Get with a fallback value.
func (f Fields) Lookup(name, fallback string) string {
	if v, ok := f.Get(name); ok {
		return v
	}
	return fallback
}

// Without returns a copy of f minus the named fields.
func (f Fields) Without(names ...string) Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	for _, n := range names {
		delete(out, n)
		delete(out, strings.ReplaceAll(n, " ", "_"))
		delete(out, Normalize(n))
	}
	return out
}

// FieldsFor merges the document defaults with the test case overrides.
// Overrides win.
func (d *Document) FieldsFor(tc *TestCase) Fields {
	merged := make(Fields, len(d.Defaults)+len(tc.Overrides))
	for k, v := range d.Defaults {
		merged[k] = v
	}
	for k, v := range tc.Overrides {
		merged[k] = v
	}
	return merged
}
