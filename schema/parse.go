package schema

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// MaxTypeRefDepth bounds the number of LIST / NON_NULL wrappers accepted
// around a named type. The standard introspection query nests ofType
// seven levels deep, so a well-formed document never reaches it.
const MaxTypeRefDepth = 8

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Parse decodes a raw introspection document and builds a Schema.
func Parse(raw []byte) (*Schema, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, parseErr("", err)
	}
	return ParseDocument(env.document())
}

// ParseDocument builds a Schema from an already decoded document.
// Types are registered before any field is resolved so mutually
// recursive types parse in a single call.
func ParseDocument(doc *Document) (*Schema, error) {
	if doc == nil || len(doc.Types) == 0 {
		return nil, parseErr("", ErrNoTypes)
	}

	s := NewSchema(deref(doc.Description))
	for i := range doc.Types {
		dt := &doc.Types[i]
		kind := TypeKind(dt.Kind)
		if !kind.valid() || kind.IsWrapper() {
			return nil, parseErr(dt.Name, fmt.Errorf("%w %q", ErrInvalidKind, dt.Kind))
		}
		if dt.Name == "" {
			return nil, parseErr(fmt.Sprintf("types[%d]", i), fmt.Errorf("%w: type without name", ErrMalformedTypeRef))
		}
		s.AddType(NewType(dt.Name, kind, deref(dt.Description)))
	}
	backfillScalars(s)

	p := &parser{schema: s}
	for i := range doc.Types {
		dt := &doc.Types[i]
		if err := p.fillType(s.Types[dt.Name], dt); err != nil {
			return nil, err
		}
	}
	for i := range doc.Directives {
		d, err := p.directive(&doc.Directives[i])
		if err != nil {
			return nil, err
		}
		s.AddDirective(d)
	}

	var err error
	if s.QueryType, err = p.rootName("queryType", doc.QueryType); err != nil {
		return nil, err
	}
	if s.MutationType, err = p.rootName("mutationType", doc.MutationType); err != nil {
		return nil, err
	}
	if s.SubscriptionType, err = p.rootName("subscriptionType", doc.SubscriptionType); err != nil {
		return nil, err
	}
	return s.Freeze(), nil
}

type parser struct {
	schema *Schema
}

func (p *parser) rootName(path string, n *DocumentName) (string, error) {
	if n == nil || n.Name == "" {
		return "", nil
	}
	if _, ok := p.schema.Types[n.Name]; !ok {
		return "", parseErr(path, fmt.Errorf("%w %q", ErrUnknownType, n.Name))
	}
	return n.Name, nil
}

// fillType populates t in place. A duplicate name in the document is
// filled twice and the last declaration wins.
func (p *parser) fillType(t *Type, dt *DocumentType) error {
	t.Kind = TypeKind(dt.Kind)
	t.Description = deref(dt.Description)
	t.Fields, t.InputFields, t.EnumValues = nil, nil, nil
	t.Interfaces, t.PossibleTypes = nil, nil

	for i := range dt.Fields {
		df := &dt.Fields[i]
		path := t.Name + "." + df.Name
		ref, err := p.typeRef(path, df.Type)
		if err != nil {
			return err
		}
		f := NewField(df.Name, deref(df.Description), ref)
		if df.IsDeprecated {
			f.SetDeprecated(deref(df.DeprecationReason))
		}
		for j := range df.Args {
			a, err := p.inputValue(path, &df.Args[j])
			if err != nil {
				return err
			}
			f.AddArgument(a)
		}
		t.AddField(f)
	}
	for i := range dt.InputFields {
		v, err := p.inputValue(t.Name, &dt.InputFields[i])
		if err != nil {
			return err
		}
		t.AddInputField(v)
	}
	for _, ev := range dt.EnumValues {
		v := NewEnumValue(ev.Name, deref(ev.Description))
		if ev.IsDeprecated {
			v.SetDeprecated(deref(ev.DeprecationReason))
		}
		t.AddEnumValue(v)
	}
	for i := range dt.Interfaces {
		ref, err := p.typeRef(t.Name+" implements", &dt.Interfaces[i])
		if err != nil {
			return err
		}
		t.AddInterface(ref.Name)
	}
	for i := range dt.PossibleTypes {
		ref, err := p.typeRef(t.Name+" possibleTypes", &dt.PossibleTypes[i])
		if err != nil {
			return err
		}
		t.AddPossibleType(ref.Name)
	}
	return nil
}

func (p *parser) inputValue(parent string, dv *DocumentInputValue) (*InputValue, error) {
	path := parent + "(" + dv.Name + ")"
	ref, err := p.typeRef(path, dv.Type)
	if err != nil {
		return nil, err
	}
	v := NewInputValue(dv.Name, deref(dv.Description), ref)
	if dv.DefaultValue != nil {
		v.SetDefault(*dv.DefaultValue)
	}
	v.IsDeprecated = dv.IsDeprecated
	v.DeprecationReason = deref(dv.DeprecationReason)
	return v, nil
}

func (p *parser) directive(dd *DocumentDirective) (*Directive, error) {
	d := NewDirective(dd.Name, deref(dd.Description)).
		AddLocations(dd.Locations...).
		SetRepeatable(dd.IsRepeatable)
	for i := range dd.Args {
		a, err := p.inputValue("@"+dd.Name, &dd.Args[i])
		if err != nil {
			return nil, err
		}
		d.AddArgument(a)
	}
	return d, nil
}

// typeRef converts a reference chain. It fails rather than truncating when
// the chain is deeper than MaxTypeRefDepth or a wrapper has no inner type.
func (p *parser) typeRef(path string, dr *DocumentTypeRef) (*TypeRef, error) {
	if dr == nil {
		return nil, parseErr(path, fmt.Errorf("%w: missing type", ErrMalformedTypeRef))
	}
	root := &TypeRef{}
	current := root
	for depth := 0; ; depth++ {
		if depth > MaxTypeRefDepth {
			return nil, parseErr(path, ErrTypeRefTooDeep)
		}
		kind := TypeKind(dr.Kind)
		if !kind.valid() {
			return nil, parseErr(path, fmt.Errorf("%w %q", ErrInvalidKind, dr.Kind))
		}
		current.Kind = kind
		if !kind.IsWrapper() {
			name := deref(dr.Name)
			if name == "" {
				return nil, parseErr(path, fmt.Errorf("%w: %s without name", ErrMalformedTypeRef, kind))
			}
			if _, ok := p.schema.Types[name]; !ok {
				return nil, parseErr(path, fmt.Errorf("%w %q", ErrUnknownType, name))
			}
			current.Name = name
			return root, nil
		}
		if dr.OfType == nil {
			return nil, parseErr(path, fmt.Errorf("%w: %s without ofType", ErrMalformedTypeRef, kind))
		}
		current.OfType = &TypeRef{}
		current = current.OfType
		dr = dr.OfType
	}
}
