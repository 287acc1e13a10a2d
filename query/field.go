package query

import (
	"strings"
)

// Field is one entry of a selection set. Arguments are carried along but
// are not part of the field's identity, see Key.
type Field struct {
	Name      string
	Alias     string
	Directive *Directive
	SubFields *Fields
	Args      map[string]any

	err error // sticky normalisation error from SubFields
}

// FieldOption configures a Field.
type FieldOption func(*Field)

// Alias renders the field as `alias: name`.
func Alias(alias string) FieldOption {
	return func(f *Field) { f.Alias = alias }
}

func WithDirective(d *Directive) FieldOption {
	return func(f *Field) { f.Directive = d }
}

// SubFields sets the nested selection. Items are normalised like NewFields.
func SubFields(items ...any) FieldOption {
	return func(f *Field) {
		fs, err := NewFields(items...)
		if err != nil {
			f.err = err
			return
		}
		f.SubFields = fs
	}
}

// Arg sets a single argument value.
func Arg(name string, value any) FieldOption {
	return func(f *Field) {
		if f.Args == nil {
			f.Args = make(map[string]any)
		}
		f.Args[name] = value
	}
}

// Args merges a set of argument values.
func Args(args map[string]any) FieldOption {
	return func(f *Field) {
		for k, v := range args {
			Arg(k, v)(f)
		}
	}
}

func NewField(name string, opts ...FieldOption) *Field {
	f := &Field{Name: name}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Sub is shorthand for NewField(name, SubFields(items...)).
func Sub(name string, items ...any) *Field {
	return NewField(name, SubFields(items...))
}

// Err reports a selection item that could not be normalised.
func (f *Field) Err() error { return f.err }

// ResponseKey is the key the field's value appears under in a response.
func (f *Field) ResponseKey() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// Key identifies the field for deduplication. It covers the alias, name,
// directive and sub-selection; argument values are deliberately left out.
func (f *Field) Key() string {
	var b strings.Builder
	f.writeKey(&b)
	return b.String()
}

func (f *Field) writeKey(b *strings.Builder) {
	if f.Alias != "" {
		b.WriteString(f.Alias)
		b.WriteByte(':')
	}
	b.WriteString(f.Name)
	if f.Directive != nil {
		b.WriteByte('@')
		b.WriteString(f.Directive.Key())
	}
	if f.SubFields.Len() > 0 {
		b.WriteByte('{')
		b.WriteString(f.SubFields.Key())
		b.WriteByte('}')
	}
}

func (f *Field) Equal(other *Field) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.Key() == other.Key()
}

// Add returns a new selection holding f followed by items.
func (f *Field) Add(items ...any) (*Fields, error) {
	return NewFields(append([]any{f}, items...)...)
}

// And is an alias of Add.
func (f *Field) And(items ...any) (*Fields, error) { return f.Add(items...) }

func (f *Field) String() string { return f.Key() }
