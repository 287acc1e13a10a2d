package query

import (
	"strconv"
	"strings"

	"github.com/hanpama/gqlclient/schema"
)

// typenameField is available on every composite type without being declared.
var typenameField = schema.NewField("__typename", "The name of the current Object type at runtime.",
	schema.NonNullType(schema.NamedType(schema.TypeKindScalar, "String")))

// Variable is one argument lifted to an operation variable.
type Variable struct {
	Ref   string // reference without the leading $
	Name  string // argument name on the field or directive
	Value any
	Type  *schema.TypeRef
}

// Prepare validates the selection against parent and returns a frozen copy.
// Variable references are numbered from 1 in selection order.
func (fs *Fields) Prepare(parent *schema.Type, s *schema.Schema) (*PreparedFields, error) {
	return newPreparer(s).fields(fs, parent)
}

// Prepare validates a single field against parent.
func (f *Field) Prepare(parent *schema.Type, s *schema.Schema) (*PreparedField, error) {
	return newPreparer(s).field(f, parent)
}

// Prepare validates the directive against the schema's directive registry.
func (d *Directive) Prepare(s *schema.Schema) (*PreparedDirective, error) {
	return newPreparer(s).directive(d)
}

// preparer owns the counter that keeps variable references unique across
// one preparation pass.
type preparer struct {
	schema *schema.Schema
	seq    int
}

func newPreparer(s *schema.Schema) *preparer { return &preparer{schema: s} }

func (p *preparer) next() int {
	p.seq++
	return p.seq
}

func (p *preparer) ref(prefix string, n int, arg string) string {
	return prefix + "_" + strconv.Itoa(n) + "_" + arg
}

func (p *preparer) fields(fs *Fields, parent *schema.Type) (*PreparedFields, error) {
	if parent == nil {
		return nil, precondition("no parent type for selection")
	}
	out := &PreparedFields{}
	for _, f := range fs.Items() {
		pf, err := p.field(f, parent)
		if err != nil {
			return nil, err
		}
		out.Fields = append(out.Fields, pf)
	}
	return out, nil
}

func (p *preparer) field(f *Field, parent *schema.Type) (*PreparedField, error) {
	switch {
	case p.schema == nil:
		return nil, precondition("no schema to prepare %q against", f.Name)
	case parent == nil:
		return nil, precondition("no parent type for field %q", f.Name)
	case f.Name == "":
		return nil, precondition("field without name")
	case f.err != nil:
		return nil, f.err
	}

	def, ok := parent.Field(f.Name)
	if !ok && f.Name == typenameField.Name && parent.IsObjectKind() {
		def, ok = typenameField, true
	}
	if !ok {
		return nil, &ValidationError{Name: f.Name, Parent: parent.Name, Err: ErrUnknownField}
	}

	pf := &PreparedField{Name: f.Name, Alias: f.Alias, Definition: def}
	if len(f.Args) > 0 {
		n := p.next()
		prefix := f.ResponseKey()
		for _, name := range sortedKeys(f.Args) {
			in, ok := def.Argument(name)
			if !ok {
				return nil, &ValidationError{Name: name, Parent: parent.Name + "." + def.Name, Err: ErrUnknownArgument}
			}
			pf.Args = append(pf.Args, Variable{Ref: p.ref(prefix, n, name), Name: name, Value: f.Args[name], Type: in.Type})
		}
	}

	if f.Directive != nil {
		pd, err := p.directive(f.Directive)
		if err != nil {
			return nil, err
		}
		pf.Directive = pd
	}

	if f.SubFields.Len() > 0 {
		out := def.Type.LeafType(p.schema)
		if out == nil || !out.IsObjectKind() {
			return nil, &ValidationError{Name: f.Name, Parent: parent.Name, Err: ErrLeafSelection}
		}
		sub, err := p.fields(f.SubFields, out)
		if err != nil {
			return nil, err
		}
		pf.SubFields = sub
	}
	pf.index()
	return pf, nil
}

func (p *preparer) directive(d *Directive) (*PreparedDirective, error) {
	switch {
	case p.schema == nil:
		return nil, precondition("no schema to prepare @%s against", d.Name)
	case d.Name == "":
		return nil, precondition("directive without name")
	}
	def, ok := p.schema.Directive(d.Name)
	if !ok {
		return nil, &ValidationError{Name: d.Name, Err: ErrUnknownDirective}
	}
	pd := &PreparedDirective{Name: d.Name, Definition: def}
	if len(d.Args) > 0 {
		n := p.next()
		for _, name := range sortedKeys(d.Args) {
			in, ok := def.Argument(name)
			if !ok {
				return nil, &ValidationError{Name: name, Parent: "@" + d.Name, Err: ErrUnknownDirectiveArgument}
			}
			pd.Args = append(pd.Args, Variable{Ref: p.ref(d.Name, n, name), Name: name, Value: d.Args[name], Type: in.Type})
		}
	}
	return pd, nil
}

// PreparedDirective is a directive bound to its schema definition.
type PreparedDirective struct {
	Name       string
	Definition *schema.Directive
	Args       []Variable
}

// GraphQL renders the directive, e.g. `@include(if: $include_2_if)`.
func (d *PreparedDirective) GraphQL() string {
	var b strings.Builder
	d.write(&b)
	return b.String()
}

func (d *PreparedDirective) write(b *strings.Builder) {
	b.WriteByte('@')
	b.WriteString(d.Name)
	writeArgRefs(b, d.Args)
}

// VarRefToValue maps each variable reference to its value.
func (d *PreparedDirective) VarRefToValue() map[string]any {
	return valuesOf(d.Args)
}

// VarRefToTypeRef maps each variable reference to its declared type.
func (d *PreparedDirective) VarRefToTypeRef() map[string]*schema.TypeRef {
	return typesOf(d.Args)
}

// PreparedField is a field validated against its parent type. It holds
// no reference back to the Field it was built from.
type PreparedField struct {
	Name       string
	Alias      string
	Definition *schema.Field
	Directive  *PreparedDirective
	SubFields  *PreparedFields
	Args       []Variable

	// Own arguments only; see Variables for the flattened view.
	VarNameToRef  map[string]string
	VarRefToValue map[string]any
	VarRefToType  map[string]*schema.TypeRef
}

func (pf *PreparedField) index() {
	pf.VarNameToRef = make(map[string]string, len(pf.Args))
	for _, a := range pf.Args {
		pf.VarNameToRef[a.Name] = a.Ref
	}
	pf.VarRefToValue = valuesOf(pf.Args)
	pf.VarRefToType = typesOf(pf.Args)
}

// Variables lists the field's own arguments, then its directive's, then
// every descendant's, in selection order.
func (pf *PreparedField) Variables() []Variable {
	out := append([]Variable(nil), pf.Args...)
	if pf.Directive != nil {
		out = append(out, pf.Directive.Args...)
	}
	if pf.SubFields != nil {
		out = append(out, pf.SubFields.Variables()...)
	}
	return out
}

// ReducedVarRefToValue merges the field's variables with all descendants'.
func (pf *PreparedField) ReducedVarRefToValue() map[string]any { return valuesOf(pf.Variables()) }

// ReducedVarRefToTypeRef merges the field's variable types with all descendants'.
func (pf *PreparedField) ReducedVarRefToTypeRef() map[string]*schema.TypeRef {
	return typesOf(pf.Variables())
}

// GraphQL renders the field selection, e.g. `my_height: height(unit: $my_height_1_unit)`.
func (pf *PreparedField) GraphQL() string {
	var b strings.Builder
	pf.write(&b)
	return b.String()
}

func (pf *PreparedField) write(b *strings.Builder) {
	if pf.Alias != "" {
		b.WriteString(pf.Alias)
		b.WriteString(": ")
	}
	b.WriteString(pf.Name)
	writeArgRefs(b, pf.Args)
	if pf.Directive != nil {
		b.WriteByte(' ')
		pf.Directive.write(b)
	}
	if pf.SubFields != nil && len(pf.SubFields.Fields) > 0 {
		b.WriteString(" { ")
		pf.SubFields.write(b)
		b.WriteString(" }")
	}
}

// PreparedFields is a validated selection set.
type PreparedFields struct {
	Fields []*PreparedField
}

func (pfs *PreparedFields) Variables() []Variable {
	if pfs == nil {
		return nil
	}
	var out []Variable
	for _, pf := range pfs.Fields {
		out = append(out, pf.Variables()...)
	}
	return out
}

func (pfs *PreparedFields) VarRefToValue() map[string]any { return valuesOf(pfs.Variables()) }

func (pfs *PreparedFields) VarRefToTypeRef() map[string]*schema.TypeRef {
	return typesOf(pfs.Variables())
}

// GraphQL renders the selection body without surrounding braces.
func (pfs *PreparedFields) GraphQL() string {
	if pfs == nil {
		return ""
	}
	var b strings.Builder
	pfs.write(&b)
	return b.String()
}

func (pfs *PreparedFields) write(b *strings.Builder) {
	for i, pf := range pfs.Fields {
		if i > 0 {
			b.WriteByte(' ')
		}
		pf.write(b)
	}
}

func writeArgRefs(b *strings.Builder, args []Variable) {
	if len(args) == 0 {
		return
	}
	b.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.Name)
		b.WriteString(": $")
		b.WriteString(a.Ref)
	}
	b.WriteByte(')')
}

func valuesOf(vars []Variable) map[string]any {
	out := make(map[string]any, len(vars))
	for _, v := range vars {
		out[v.Ref] = v.Value
	}
	return out
}

func typesOf(vars []Variable) map[string]*schema.TypeRef {
	out := make(map[string]*schema.TypeRef, len(vars))
	for _, v := range vars {
		out[v.Ref] = v.Type
	}
	return out
}
