package client

import (
	"context"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/hanpama/gqlclient/internal/reqid"
	"github.com/hanpama/gqlclient/schema"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultSchemaKey is the cache key of a BackendProvider whose backend
// does not implement SchemaKeyer.
const DefaultSchemaKey = "default"

// BackendProvider loads the schema by sending the introspection query
// through a backend. The server must allow introspection.
type BackendProvider struct {
	Backend Backend
	Options []schema.QueryOption
}

func NewBackendProvider(b Backend, opts ...schema.QueryOption) *BackendProvider {
	return &BackendProvider{Backend: b, Options: opts}
}

func (p *BackendProvider) LoadSchema(ctx context.Context) ([]byte, error) {
	ctx, _ = reqid.Ensure(ctx)
	req := &Request{
		Query:         schema.IntrospectionQuery(p.Options...),
		Variables:     map[string]any{},
		OperationName: schema.IntrospectionOperationName,
		OperationType: schema.OperationQuery,
	}
	payload, err := p.Backend.ExecuteQuery(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("client: introspect: %w", err)
	}
	resp := NewResponse(req, payload)
	if resp.Data == nil {
		if err := resp.Err(); err != nil {
			return nil, fmt.Errorf("client: introspect: %w", err)
		}
		return nil, errors.New("client: introspect: response has no data")
	}
	return json.Marshal(resp.Data)
}

func (p *BackendProvider) SchemaKey() string {
	if k, ok := p.Backend.(SchemaKeyer); ok {
		return k.SchemaKey()
	}
	return DefaultSchemaKey
}
