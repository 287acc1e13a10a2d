package language

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
)

func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, syntaxError(err)
	}
	return doc, nil
}

func ParseSchema(name, source string) (*SchemaDocument, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, syntaxError(err)
	}
	return doc, nil
}

// SyntaxError is a parse failure with the position it was found at.
type SyntaxError struct {
	Message string
	Line    int
	Column  int
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		return "syntax error: " + e.Message
	}
	return fmt.Sprintf("syntax error at %d:%d: %s", e.Line, e.Column, e.Message)
}

func syntaxError(err error) error {
	var gqlErr *gqlerror.Error
	if !errors.As(err, &gqlErr) {
		return err
	}
	se := &SyntaxError{Message: gqlErr.Message}
	if len(gqlErr.Locations) > 0 {
		se.Line, se.Column = gqlErr.Locations[0].Line, gqlErr.Locations[0].Column
	}
	return se
}

// OperationSummary names one operation of a query document.
type OperationSummary struct {
	Name      string
	Operation Operation
	Fields    []string
}

// Summarize lists the operations of doc with their top level response keys.
func Summarize(doc *QueryDocument) []OperationSummary {
	out := make([]OperationSummary, 0, len(doc.Operations))
	for _, op := range doc.Operations {
		s := OperationSummary{Name: op.Name, Operation: op.Operation}
		for _, sel := range op.SelectionSet {
			if f, ok := sel.(*Field); ok {
				s.Fields = append(s.Fields, f.Alias)
			}
		}
		out = append(out, s)
	}
	return out
}

// FormatQuery pretty prints source. It fails on syntax errors.
func FormatQuery(source string) (string, error) {
	doc, err := ParseQuery(source)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatQueryDocument(doc)
	return buf.String(), nil
}
