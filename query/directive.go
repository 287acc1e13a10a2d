package query

import "sort"

// Directive is a field-level directive such as @include(if: ...).
type Directive struct {
	Name string
	Args map[string]any
}

func NewDirective(name string, args map[string]any) *Directive {
	return &Directive{Name: name, Args: args}
}

// Include builds @include(if: cond).
func Include(cond any) *Directive { return NewDirective("include", map[string]any{"if": cond}) }

// Skip builds @skip(if: cond).
func Skip(cond any) *Directive { return NewDirective("skip", map[string]any{"if": cond}) }

// Key identifies the directive by name; argument values are not part of it.
func (d *Directive) Key() string { return d.Name }

func (d *Directive) Equal(other *Directive) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.Key() == other.Key()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
