package schema

var builtinScalars = map[string]string{
	"String":  "The `String` scalar type represents textual data, represented as UTF-8 character sequences.",
	"Int":     "The `Int` scalar type represents non-fractional signed whole numeric values.",
	"Float":   "The `Float` scalar type represents signed double-precision fractional values.",
	"Boolean": "The `Boolean` scalar type represents `true` or `false`.",
	"ID":      "The `ID` scalar type represents a unique identifier, often used to refetch an object or as a key for caching.",
}

// IsBuiltinScalar reports whether name is one of the five specified scalars.
func IsBuiltinScalar(name string) bool {
	_, ok := builtinScalars[name]
	return ok
}

// IsBuiltinDirective reports whether name is a directive every server supports.
func IsBuiltinDirective(name string) bool {
	switch name {
	case "include", "skip", "deprecated", "specifiedBy", "oneOf":
		return true
	}
	return false
}

// IsIntrospectionType reports whether name belongs to the introspection system.
func IsIntrospectionType(name string) bool {
	return len(name) > 2 && name[0] == '_' && name[1] == '_'
}

// IsBuiltin reports whether a type name is provided by every GraphQL server.
func IsBuiltin(name string) bool { return IsBuiltinScalar(name) || IsIntrospectionType(name) }

func booleanNonNull() *TypeRef { return NonNullType(NamedType(TypeKindScalar, "Boolean")) }

func newIncludeDirective() *Directive {
	return NewDirective("include", "Directs the executor to include this field or fragment only when the `if` argument is true.").
		AddArgument(NewInputValue("if", "Included when true.", booleanNonNull())).
		AddLocations("FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT")
}

func newSkipDirective() *Directive {
	return NewDirective("skip", "Directs the executor to skip this field or fragment when the `if` argument is true.").
		AddArgument(NewInputValue("if", "Skipped when true.", booleanNonNull())).
		AddLocations("FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT")
}

// backfillDirectives adds include and skip when a document leaves them out.
// Older servers omit the directives list entirely.
func backfillDirectives(s *Schema) {
	if _, ok := s.Directives["include"]; !ok {
		s.Directives["include"] = newIncludeDirective()
	}
	if _, ok := s.Directives["skip"]; !ok {
		s.Directives["skip"] = newSkipDirective()
	}
}

// backfillScalars registers the specified scalars a document does not declare.
func backfillScalars(s *Schema) {
	for name, desc := range builtinScalars {
		if _, ok := s.Types[name]; !ok {
			s.Types[name] = NewType(name, TypeKindScalar, desc)
		}
	}
}
