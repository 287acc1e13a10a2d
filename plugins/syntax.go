package plugins

import (
	"context"
	"errors"
	"fmt"

	"github.com/hanpama/gqlclient/client"
	"github.com/hanpama/gqlclient/internal/language"
)

var (
	// ErrSyntax is wrapped by errors of the SyntaxCheck plugin.
	ErrSyntax = errors.New("plugins: invalid query syntax")
	// ErrOperationName is returned when the query has no operation named
	// like the request.
	ErrOperationName = errors.New("plugins: operation not found in query")
)

type syntaxCheck struct{}

// SyntaxCheck parses every outgoing query and fails the call before it
// reaches the backend when the text is not valid GraphQL or does not
// define the operation the request names.
func SyntaxCheck() client.Plugin { return syntaxCheck{} }

func (syntaxCheck) Pre(_ context.Context, req *client.Request) (*client.Request, error) {
	doc, err := language.ParseQuery(req.Query)
	if err != nil {
		return nil, fmt.Errorf("%w in %s `%s`: %w", ErrSyntax, req.OperationType, req.OperationName, err)
	}
	if req.OperationName == "" {
		return req, nil
	}
	for _, op := range language.Summarize(doc) {
		if op.Name == req.OperationName {
			return req, nil
		}
	}
	return nil, fmt.Errorf("%w: %s `%s`", ErrOperationName, req.OperationType, req.OperationName)
}

func (syntaxCheck) Post(_ context.Context, resp *client.Response) (*client.Response, error) {
	return resp, nil
}
