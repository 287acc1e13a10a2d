package schema

import "strings"

// Schema is the client-side view of a remote GraphQL schema.
// It is built once by Parse and never mutated afterwards.
type Schema struct {
	QueryType        string
	MutationType     string
	SubscriptionType string
	Types            map[string]*Type // All named types keyed by name
	Directives       map[string]*Directive
	Description      string
}

// GetQueryType returns the root query type (may be nil if absent)
func (s *Schema) GetQueryType() *Type { return s.namedRoot(s.QueryType) }

// GetMutationType returns the root mutation type (may be nil if absent)
func (s *Schema) GetMutationType() *Type { return s.namedRoot(s.MutationType) }

// GetSubscriptionType returns the root subscription type (may be nil if absent)
func (s *Schema) GetSubscriptionType() *Type { return s.namedRoot(s.SubscriptionType) }

func (s *Schema) namedRoot(name string) *Type {
	if s == nil || name == "" {
		return nil
	}
	return s.Types[name]
}

// RootType returns the entry point type for op.
func (s *Schema) RootType(op OperationType) *Type {
	switch op {
	case OperationQuery:
		return s.GetQueryType()
	case OperationMutation:
		return s.GetMutationType()
	case OperationSubscription:
		return s.GetSubscriptionType()
	}
	return nil
}

// Type looks up a named type.
func (s *Schema) Type(name string) (*Type, bool) {
	if s == nil {
		return nil, false
	}
	t, ok := s.Types[name]
	return t, ok
}

// Directive looks up a directive definition.
func (s *Schema) Directive(name string) (*Directive, bool) {
	if s == nil {
		return nil, false
	}
	d, ok := s.Directives[name]
	return d, ok
}

// OperationType is one of the three root operation kinds.
type OperationType string

const (
	OperationQuery        OperationType = "query"
	OperationMutation     OperationType = "mutation"
	OperationSubscription OperationType = "subscription"
)

func (o OperationType) Valid() bool {
	switch o {
	case OperationQuery, OperationMutation, OperationSubscription:
		return true
	}
	return false
}

func (o OperationType) String() string { return string(o) }

// Type is a named GraphQL type (object, interface, union, scalar, enum, input)
type Type struct {
	Name          string
	Kind          TypeKind
	Description   string
	Fields        []*Field      // For OBJECT and INTERFACE
	Interfaces    []string      // For OBJECT and INTERFACE (implemented/extended)
	PossibleTypes []string      // For INTERFACE and UNION
	EnumValues    []*EnumValue  // For ENUM
	InputFields   []*InputValue // For INPUT_OBJECT

	fieldIndex map[string]*Field
	inputIndex map[string]*InputValue
}

// Field returns the field definition called name.
func (t *Type) Field(name string) (*Field, bool) {
	if t == nil {
		return nil, false
	}
	if t.fieldIndex == nil {
		for _, f := range t.Fields {
			if f.Name == name {
				return f, true
			}
		}
		return nil, false
	}
	f, ok := t.fieldIndex[name]
	return f, ok
}

// InputField returns the input field definition called name.
func (t *Type) InputField(name string) (*InputValue, bool) {
	if t == nil {
		return nil, false
	}
	if t.inputIndex == nil {
		return findInput(t.InputFields, name)
	}
	v, ok := t.inputIndex[name]
	return v, ok
}

// FieldNames lists field names in declaration order.
func (t *Type) FieldNames() []string {
	names := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		names = append(names, f.Name)
	}
	return names
}

// IsObjectKind reports whether values of t carry a selection set.
func (t *Type) IsObjectKind() bool { return t != nil && t.Kind.IsObjectKind() }

// IsScalarKind reports whether values of t are leaves.
func (t *Type) IsScalarKind() bool { return t != nil && t.Kind.IsScalarKind() }

func (t *Type) reindex() {
	if len(t.Fields) > 0 {
		t.fieldIndex = make(map[string]*Field, len(t.Fields))
		for _, f := range t.Fields {
			f.reindex()
			t.fieldIndex[f.Name] = f
		}
	}
	if len(t.InputFields) > 0 {
		t.inputIndex = make(map[string]*InputValue, len(t.InputFields))
		for _, v := range t.InputFields {
			t.inputIndex[v.Name] = v
		}
	}
}

// Field represents a field on an object or interface
type Field struct {
	Name              string
	Description       string
	Type              *TypeRef
	Arguments         []*InputValue
	IsDeprecated      bool
	DeprecationReason string

	argIndex map[string]*InputValue
}

// Argument returns the argument definition called name.
func (f *Field) Argument(name string) (*InputValue, bool) {
	if f == nil {
		return nil, false
	}
	if f.argIndex == nil {
		return findInput(f.Arguments, name)
	}
	a, ok := f.argIndex[name]
	return a, ok
}

// OutputType resolves the named type the field returns.
func (f *Field) OutputType(s *Schema) *Type {
	if f == nil || f.Type == nil {
		return nil
	}
	t, _ := s.Type(f.Type.NamedType())
	return t
}

func (f *Field) reindex() {
	if len(f.Arguments) == 0 {
		return
	}
	f.argIndex = make(map[string]*InputValue, len(f.Arguments))
	for _, a := range f.Arguments {
		f.argIndex[a.Name] = a
	}
}

// TypeKind represents the kind of GraphQL type
type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"

	// Wrapper kinds only appear on TypeRef.
	TypeKindList    TypeKind = "LIST"
	TypeKindNonNull TypeKind = "NON_NULL"
)

func (k TypeKind) IsWrapper() bool { return k == TypeKindList || k == TypeKindNonNull }

func (k TypeKind) IsObjectKind() bool {
	return k == TypeKindObject || k == TypeKindInterface || k == TypeKindUnion
}

func (k TypeKind) IsScalarKind() bool { return k == TypeKindScalar || k == TypeKindEnum }

func (k TypeKind) IsInputKind() bool { return k.IsScalarKind() || k == TypeKindInputObject }

func (k TypeKind) valid() bool {
	switch k {
	case TypeKindScalar, TypeKindObject, TypeKindInterface, TypeKindUnion,
		TypeKindEnum, TypeKindInputObject, TypeKindList, TypeKindNonNull:
		return true
	}
	return false
}

// TypeRef is a chain of LIST / NON_NULL wrappers ending in a named leaf.
// Leaf references carry the leaf kind as reported by introspection.
type TypeRef struct {
	Kind   TypeKind
	Name   string   // Set on the leaf only
	OfType *TypeRef // For List and NonNull
}

func (t *TypeRef) IsNonNull() bool {
	return t != nil && t.Kind == TypeKindNonNull
}

func (t *TypeRef) IsList() bool {
	if t == nil {
		return false
	}
	if t.Kind == TypeKindList {
		return true
	}
	if t.Kind == TypeKindNonNull && t.OfType != nil {
		return t.OfType.Kind == TypeKindList
	}
	return false
}

func (t *TypeRef) Unwrap() *TypeRef {
	if t != nil && t.Kind.IsWrapper() {
		return t.OfType
	}
	return t
}

// Leaf returns the innermost named reference.
func (t *TypeRef) Leaf() *TypeRef {
	current := t
	for current != nil && current.Kind.IsWrapper() {
		current = current.OfType
	}
	return current
}

// NamedType returns the innermost type name.
func (t *TypeRef) NamedType() string {
	if leaf := t.Leaf(); leaf != nil {
		return leaf.Name
	}
	return ""
}

// LeafKind returns the kind of the innermost named type.
func (t *TypeRef) LeafKind() TypeKind {
	if leaf := t.Leaf(); leaf != nil {
		return leaf.Kind
	}
	return ""
}

// LeafType resolves the innermost named type against s.
func (t *TypeRef) LeafType(s *Schema) *Type {
	named, _ := s.Type(t.NamedType())
	return named
}

func (t *TypeRef) IsObjectKind() bool { return t.LeafKind().IsObjectKind() }
func (t *TypeRef) IsScalarKind() bool { return t.LeafKind().IsScalarKind() }
func (t *TypeRef) IsInputKind() bool  { return t.LeafKind().IsInputKind() }

// Depth counts the wrappers around the leaf.
func (t *TypeRef) Depth() int {
	n := 0
	for current := t; current != nil && current.Kind.IsWrapper(); current = current.OfType {
		n++
	}
	return n
}

// String renders the reference the way GraphQL variable declarations spell it.
func (t *TypeRef) String() string {
	var b strings.Builder
	writeTypeRef(&b, t)
	return b.String()
}

func writeTypeRef(b *strings.Builder, t *TypeRef) {
	if t == nil {
		return
	}
	switch t.Kind {
	case TypeKindList:
		b.WriteByte('[')
		writeTypeRef(b, t.OfType)
		b.WriteByte(']')
	case TypeKindNonNull:
		writeTypeRef(b, t.OfType)
		b.WriteByte('!')
	default:
		b.WriteString(t.Name)
	}
}

type EnumValue struct {
	Name              string
	Description       string
	IsDeprecated      bool
	DeprecationReason string
}

// InputValue is an argument or input field definition.
// DefaultValue holds the GraphQL literal as reported by introspection.
type InputValue struct {
	Name              string
	Description       string
	Type              *TypeRef
	DefaultValue      *string
	IsDeprecated      bool
	DeprecationReason string
}

type Directive struct {
	Name         string
	Description  string
	Locations    []string
	Arguments    []*InputValue
	IsRepeatable bool
}

// Argument returns the directive argument called name.
func (d *Directive) Argument(name string) (*InputValue, bool) {
	if d == nil {
		return nil, false
	}
	return findInput(d.Arguments, name)
}

func findInput(values []*InputValue, name string) (*InputValue, bool) {
	for _, v := range values {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

func NonNullType(t *TypeRef) *TypeRef { return &TypeRef{Kind: TypeKindNonNull, OfType: t} }
func ListType(t *TypeRef) *TypeRef    { return &TypeRef{Kind: TypeKindList, OfType: t} }

// NamedType builds a leaf reference.
func NamedType(kind TypeKind, name string) *TypeRef { return &TypeRef{Kind: kind, Name: name} }
