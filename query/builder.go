package query

import "strings"

// VariableDef declares an operation variable, e.g. `$ep: Episode!`.
type VariableDef struct {
	Name string
	Type string
}

// Var builds a VariableDef. The leading $ is optional.
func Var(name, typ string) VariableDef {
	return VariableDef{Name: "$" + strings.TrimPrefix(name, "$"), Type: typ}
}

// Builder assembles `<operation> { <action> { <fields> } }` from text
// fragments. It knows nothing about the schema.
type Builder struct {
	operation string
	action    string
	fields    string
}

func NewBuilder() *Builder { return &Builder{} }

// Operation sets the operation header. Variables are only rendered when
// the operation is named.
func (b *Builder) Operation(kind, name string, vars ...VariableDef) *Builder {
	op := kind
	if name != "" {
		op += " " + name
		if len(vars) > 0 {
			parts := make([]string, len(vars))
			for i, v := range vars {
				parts[i] = v.Name + ": " + v.Type
			}
			op += "(" + strings.Join(parts, ", ") + ")"
		}
	}
	b.operation = op
	return b
}

// Action sets the root field and its arguments.
func (b *Builder) Action(name string, args ...Argument) *Builder {
	if len(args) > 0 {
		name += "(" + joinArguments(args) + ")"
	}
	b.action = name
	return b
}

// Fields sets the selection body, without surrounding braces.
func (b *Builder) Fields(text string) *Builder {
	b.fields = text
	return b
}

// Build joins the fragments and collapses every whitespace run to one space.
func (b *Builder) Build() string {
	parts := []string{b.operation, "{", b.action}
	if strings.TrimSpace(b.fields) != "" {
		parts = append(parts, "{", b.fields, "}")
	}
	parts = append(parts, "}")
	return CollapseSpaces(strings.Join(parts, " "))
}

func (b *Builder) String() string { return b.Build() }

// CollapseSpaces trims s and replaces each whitespace run with one space.
func CollapseSpaces(s string) string { return strings.Join(strings.Fields(s), " ") }
