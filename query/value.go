package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Value is a GraphQL input literal for the untyped Builder.
// It is one of Scalar, List or Object.
type Value interface {
	GraphQL() string
	value()
}

// Scalar is a literal token written as is: 1, true, null, an enum value,
// a quoted string or a $variable reference.
type Scalar string

func (s Scalar) GraphQL() string { return string(s) }
func (Scalar) value()            {}

// List is a list literal.
type List []Value

func (l List) GraphQL() string {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = v.GraphQL()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (List) value() {}

// Object is an input object literal with ordered fields.
type Object []Argument

func (o Object) GraphQL() string { return "{" + joinArguments(o) + "}" }
func (Object) value()            {}

// Argument binds a name to a value.
type Argument struct {
	Name  string
	Value Value
}

// Bind builds an Argument.
func Bind(name string, value Value) Argument { return Argument{Name: name, Value: value} }

func joinArguments(args []Argument) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Name + ": " + a.Value.GraphQL()
	}
	return strings.Join(parts, ", ")
}

// Literal wraps an already valid token.
func Literal(token string) Scalar { return Scalar(token) }

// String quotes s as a GraphQL string.
func String(s string) Scalar { return Scalar(quoteString(s)) }

// Ref refers to an operation variable.
func Ref(name string) Scalar { return Scalar("$" + strings.TrimPrefix(name, "$")) }

// Enum names an enum value.
func Enum(name string) Scalar { return Scalar(name) }

// Null is the null literal.
const Null Scalar = "null"

// ValueOf converts plain Go data into a Value. Strings are quoted, maps
// become objects with sorted keys and slices become lists.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null, nil
	case Value:
		return x, nil
	case string:
		return String(x), nil
	case bool:
		return Scalar(strconv.FormatBool(x)), nil
	case int:
		return Scalar(strconv.Itoa(x)), nil
	case int32:
		return Scalar(strconv.FormatInt(int64(x), 10)), nil
	case int64:
		return Scalar(strconv.FormatInt(x, 10)), nil
	case float32:
		return Scalar(strconv.FormatFloat(float64(x), 'g', -1, 32)), nil
	case float64:
		return Scalar(strconv.FormatFloat(x, 'g', -1, 64)), nil
	case map[string]any:
		obj := make(Object, 0, len(x))
		for _, k := range sortedKeys(x) {
			fv, err := ValueOf(x[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			obj = append(obj, Argument{Name: k, Value: fv})
		}
		return obj, nil
	case []any:
		list := make(List, 0, len(x))
		for i, item := range x {
			iv, err := ValueOf(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			list = append(list, iv)
		}
		return list, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return ValueOf(items)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Scalar(strconv.FormatInt(rv.Int(), 10)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Scalar(strconv.FormatUint(rv.Uint(), 10)), nil
	case reflect.Float32, reflect.Float64:
		return Scalar(strconv.FormatFloat(rv.Float(), 'g', -1, 64)), nil
	case reflect.Bool:
		return Scalar(strconv.FormatBool(rv.Bool())), nil
	case reflect.String:
		return String(rv.String()), nil
	}
	return nil, fmt.Errorf("query: no literal form for %T", v)
}

func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
