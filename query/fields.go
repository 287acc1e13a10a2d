package query

import (
	"fmt"
	"sort"
	"strings"
)

// Fields is an insertion ordered set of Field keyed by Field.Key.
// Adding a field whose key is already present replaces the stored field
// but keeps its original position.
type Fields struct {
	keys  []string
	items map[string]*Field
}

// NewFields normalises items into a selection set. Accepted items:
//
//	string                    field name; blank strings are dropped
//	*Field, Field             used as is
//	*Fields, Fields           flattened
//	[]string, []any, []*Field flattened recursively
//	map[string]any            one field per key (sorted), the value is its sub-selection
//	nil                       ignored
func NewFields(items ...any) (*Fields, error) {
	fs := &Fields{}
	for _, item := range items {
		if err := fs.add(item); err != nil {
			return nil, err
		}
	}
	return fs, nil
}

// MustFields is like NewFields but panics on unsupported items.
func MustFields(items ...any) *Fields {
	fs, err := NewFields(items...)
	if err != nil {
		panic(err)
	}
	return fs
}

func (fs *Fields) add(item any) error {
	switch v := item.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		fs.put(&Field{Name: strings.TrimSpace(v)})
	case *Field:
		if v == nil {
			return nil
		}
		if v.err != nil {
			return v.err
		}
		fs.put(v)
	case Field:
		return fs.add(&v)
	case *Fields:
		for _, f := range v.Items() {
			fs.put(f)
		}
	case Fields:
		return fs.add(&v)
	case []string:
		for _, s := range v {
			if err := fs.add(s); err != nil {
				return err
			}
		}
	case []*Field:
		for _, f := range v {
			if err := fs.add(f); err != nil {
				return err
			}
		}
	case []any:
		for _, x := range v {
			if err := fs.add(x); err != nil {
				return err
			}
		}
	case map[string]any:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sub, err := NewFields(v[name])
			if err != nil {
				return err
			}
			fs.put(&Field{Name: name, SubFields: sub})
		}
	case map[string][]string:
		m := make(map[string]any, len(v))
		for k, x := range v {
			m[k] = x
		}
		return fs.add(m)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedSelection, item)
	}
	return nil
}

func (fs *Fields) put(f *Field) {
	if fs.items == nil {
		fs.items = make(map[string]*Field)
	}
	key := f.Key()
	if _, ok := fs.items[key]; !ok {
		fs.keys = append(fs.keys, key)
	}
	fs.items[key] = f
}

func (fs *Fields) Len() int {
	if fs == nil {
		return 0
	}
	return len(fs.keys)
}

// Items returns the fields in selection order.
func (fs *Fields) Items() []*Field {
	if fs == nil {
		return nil
	}
	out := make([]*Field, 0, len(fs.keys))
	for _, k := range fs.keys {
		out = append(out, fs.items[k])
	}
	return out
}

// Get returns the field stored under key.
func (fs *Fields) Get(key string) (*Field, bool) {
	if fs == nil {
		return nil, false
	}
	f, ok := fs.items[key]
	return f, ok
}

// Contains reports whether a field equal to f is selected.
func (fs *Fields) Contains(f *Field) bool {
	_, ok := fs.Get(f.Key())
	return ok
}

// Has reports whether any selected field is called name.
func (fs *Fields) Has(name string) bool {
	for _, f := range fs.Items() {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Add returns a new selection with items merged after the receiver's fields.
func (fs *Fields) Add(items ...any) (*Fields, error) {
	return NewFields(append([]any{fs}, items...)...)
}

// And is an alias of Add.
func (fs *Fields) And(items ...any) (*Fields, error) { return fs.Add(items...) }

// Key identifies the selection independent of order.
func (fs *Fields) Key() string {
	if fs.Len() == 0 {
		return ""
	}
	keys := append([]string(nil), fs.keys...)
	sort.Strings(keys)
	return strings.Join(keys, " ")
}

// Equal reports whether both selections hold the same fields.
func (fs *Fields) Equal(other *Fields) bool { return fs.Key() == other.Key() }

func (fs *Fields) String() string { return fs.Key() }
