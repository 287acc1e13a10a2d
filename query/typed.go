package query

import (
	"github.com/hanpama/gqlclient/schema"
)

type autoSelection struct{}

// Auto asks TypedBuilder.Fields to pick the selection from the schema.
var Auto = autoSelection{}

// TypedBuilder builds one operation against its schema definition.
// It is not safe for concurrent use; create one per request.
type TypedBuilder struct {
	kind     schema.OperationType
	field    *schema.Field
	schema   *schema.Schema
	settings Settings
	output   *schema.Type

	selection  *PreparedFields
	selectVars []VariableDef
	inputVars  []VariableDef
	actionArgs []Argument
}

func NewTypedBuilder(kind schema.OperationType, field *schema.Field, s *schema.Schema, settings Settings) *TypedBuilder {
	return &TypedBuilder{
		kind:     kind,
		field:    field,
		schema:   s,
		settings: settings,
		output:   field.OutputType(s),
	}
}

// Fields prepares the selection against the operation's output type and
// returns the variables it introduced. sel may be Auto or anything
// NewFields accepts.
func (b *TypedBuilder) Fields(sel any) (map[string]any, error) {
	if sel == Auto {
		sel = nil
		if b.settings.AllowAutoLookup {
			sel = AutoFields(b.output, b.schema, b.settings.LookupRecursionDepth)
		}
	}
	fs, err := NewFields(sel)
	if err != nil {
		return nil, err
	}

	b.selection, b.selectVars = nil, nil
	if fs.Len() == 0 {
		return map[string]any{}, nil
	}
	if b.output == nil {
		return nil, precondition("operation %q has no output type", b.field.Name)
	}
	prepared, err := fs.Prepare(b.output, b.schema)
	if err != nil {
		return nil, err
	}
	b.selection = prepared
	vars := prepared.Variables()
	for _, v := range vars {
		b.selectVars = append(b.selectVars, Var(v.Ref, v.Type.String()))
	}
	return valuesOf(vars), nil
}

// Variables binds operation arguments. Each declared input becomes a
// `$name: Type` variable passed as `name: $name`. Undeclared inputs fail
// with an UnknownInputError unless ValidateVariables is off, in which
// case they are forwarded in the variables map only. Each call replaces
// the inputs bound by the previous one.
func (b *TypedBuilder) Variables(inputs map[string]any) (map[string]any, error) {
	b.inputVars, b.actionArgs = nil, nil
	out := make(map[string]any, len(inputs))
	for _, name := range sortedKeys(inputs) {
		in, ok := b.field.Argument(name)
		if !ok {
			if b.settings.ValidateVariables {
				return nil, &UnknownInputError{Input: name, Operation: b.field.Name, Kind: b.kind}
			}
			out[name] = inputs[name]
			continue
		}
		b.inputVars = append(b.inputVars, Var(name, in.Type.String()))
		b.actionArgs = append(b.actionArgs, Bind(name, Ref(name)))
		out[name] = inputs[name]
	}
	return out, nil
}

// Build renders the operation text.
func (b *TypedBuilder) Build() string {
	vars := append(append([]VariableDef(nil), b.selectVars...), b.inputVars...)
	return NewBuilder().
		Operation(string(b.kind), b.field.Name, vars...).
		Action(b.field.Name, b.actionArgs...).
		Fields(b.selection.GraphQL()).
		Build()
}

// AutoFields selects every leaf field of t and descends into object
// fields while the depth is below maxDepth. Depth 0 is t itself, so
// maxDepth 1 expands the direct object fields of t but not theirs. Object
// fields whose expansion comes out empty, and fields with required
// arguments, are left out. Unions select __typename.
func AutoFields(t *schema.Type, s *schema.Schema, maxDepth int) *Fields {
	return autoFields(t, s, 0, maxDepth)
}

func autoFields(t *schema.Type, s *schema.Schema, depth, maxDepth int) *Fields {
	fs := &Fields{}
	if t == nil {
		return fs
	}
	if t.Kind == schema.TypeKindUnion {
		fs.put(&Field{Name: typenameField.Name})
		return fs
	}
	for _, def := range t.Fields {
		if hasRequiredArgs(def) {
			continue
		}
		if !def.Type.IsObjectKind() {
			fs.put(&Field{Name: def.Name})
			continue
		}
		if depth >= maxDepth {
			continue
		}
		sub := autoFields(def.Type.LeafType(s), s, depth+1, maxDepth)
		if sub.Len() == 0 {
			continue
		}
		fs.put(&Field{Name: def.Name, SubFields: sub})
	}
	return fs
}

func hasRequiredArgs(f *schema.Field) bool {
	for _, a := range f.Arguments {
		if a.Type.IsNonNull() && a.DefaultValue == nil {
			return true
		}
	}
	return false
}
