package client

import (
	"fmt"
	"sort"

	"github.com/hanpama/gqlclient/query"
	"github.com/hanpama/gqlclient/schema"
)

// RequestOption configures OperationProxy.CreateRequest.
type RequestOption func(*requestConfig)

type requestConfig struct {
	selection      any
	inputs         map[string]any
	contextValue   any
	rootValue      any
	subscriptionID string
	options        map[string]any
}

// Select sets the selection; items are normalised like query.NewFields.
// Without Select the selection is looked up automatically.
func Select(items ...any) RequestOption {
	return func(c *requestConfig) { c.selection = items }
}

// WithFields sets a prepared selection value such as *query.Fields or query.Auto.
func WithFields(sel any) RequestOption {
	return func(c *requestConfig) { c.selection = sel }
}

// Inputs sets the operation arguments.
func Inputs(inputs map[string]any) RequestOption {
	return func(c *requestConfig) {
		for k, v := range inputs {
			Input(k, v)(c)
		}
	}
}

// Input sets one operation argument.
func Input(name string, value any) RequestOption {
	return func(c *requestConfig) {
		if c.inputs == nil {
			c.inputs = make(map[string]any)
		}
		c.inputs[name] = value
	}
}

// ContextValue attaches an opaque value for the backend.
func ContextValue(v any) RequestOption {
	return func(c *requestConfig) { c.contextValue = v }
}

// RootValue attaches an opaque root value for the backend.
func RootValue(v any) RequestOption {
	return func(c *requestConfig) { c.rootValue = v }
}

// SubscriptionID sets the id a subscription is registered under.
func SubscriptionID(id string) RequestOption {
	return func(c *requestConfig) { c.subscriptionID = id }
}

// SubscriptionOptions passes transport specific options along with a subscription.
func SubscriptionOptions(opts map[string]any) RequestOption {
	return func(c *requestConfig) { c.options = opts }
}

// operation is the part of an operation proxy shared by the sync and
// async variants: it turns options into a Request.
type operation struct {
	kind     schema.OperationType
	field    *schema.Field
	schema   *schema.Schema
	settings query.Settings
}

func (o *operation) Name() string               { return o.field.Name }
func (o *operation) Kind() schema.OperationType { return o.kind }
func (o *operation) Field() *schema.Field       { return o.field }

// Doc is the field description when UseSchemaDescription is set.
func (o *operation) Doc() string {
	if !o.settings.UseSchemaDescription {
		return ""
	}
	return o.field.Description
}

// CreateRequest builds the request for one call. Every call starts from
// scratch, so nothing carries over between calls on the same proxy.
func (o *operation) CreateRequest(opts ...RequestOption) (*Request, error) {
	cfg := requestConfig{selection: query.Auto}
	for _, opt := range opts {
		opt(&cfg)
	}

	b := query.NewTypedBuilder(o.kind, o.field, o.schema, o.settings)
	selectionVars, err := b.Fields(cfg.selection)
	if err != nil {
		return nil, err
	}
	inputVars, err := b.Variables(cfg.inputs)
	if err != nil {
		return nil, err
	}
	vars := make(map[string]any, len(selectionVars)+len(inputVars))
	for k, v := range selectionVars {
		vars[k] = v
	}
	for k, v := range inputVars {
		vars[k] = v
	}

	req := &Request{
		Query:         b.Build(),
		Variables:     vars,
		OperationName: o.field.Name,
		OperationType: o.kind,
		ContextValue:  cfg.contextValue,
		RootValue:     cfg.rootValue,
	}
	if o.kind == schema.OperationSubscription {
		req.SubscriptionID = cfg.subscriptionID
		req.Options = cfg.options
	}
	return req, nil
}

// table is the name to proxy lookup built once per service proxy.
type table[P any] struct {
	kind  schema.OperationType
	ops   map[string]P
	names []string
}

func newTable[P any](kind schema.OperationType, s *schema.Schema, settings query.Settings, bind func(*operation) P) table[P] {
	t := table[P]{kind: kind, ops: make(map[string]P)}
	root := s.RootType(kind)
	if root == nil {
		return t
	}
	for _, f := range root.Fields {
		t.ops[f.Name] = bind(&operation{kind: kind, field: f, schema: s, settings: settings})
		t.names = append(t.names, f.Name)
	}
	sort.Strings(t.names)
	return t
}

func (t *table[P]) Kind() schema.OperationType { return t.kind }

// Get returns the proxy for name.
func (t *table[P]) Get(name string) (P, bool) {
	p, ok := t.ops[name]
	return p, ok
}

// Operation returns the proxy for name or an UnknownOperationError.
func (t *table[P]) Operation(name string) (P, error) {
	p, ok := t.ops[name]
	if !ok {
		return p, &UnknownOperationError{Kind: t.kind, Name: name}
	}
	return p, nil
}

// MustOperation is like Operation but panics for unknown names.
func (t *table[P]) MustOperation(name string) P {
	p, err := t.Operation(name)
	if err != nil {
		panic(err)
	}
	return p
}

func (t *table[P]) Has(name string) bool {
	_, ok := t.ops[name]
	return ok
}

// Names lists the bound operations in sorted order.
func (t *table[P]) Names() []string { return append([]string(nil), t.names...) }

func (t *table[P]) Len() int { return len(t.names) }

func (t *table[P]) String() string {
	return fmt.Sprintf("%sServiceProxy(bindings=%d)", kindLabel(t.kind), len(t.names))
}

func kindLabel(kind schema.OperationType) string {
	switch kind {
	case schema.OperationMutation:
		return "Mutation"
	case schema.OperationSubscription:
		return "Subscription"
	}
	return "Query"
}
