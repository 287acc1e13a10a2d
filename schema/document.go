package schema

// Document is the decoded form of an introspection result.
type Document struct {
	Description      *string             `json:"description,omitempty"`
	QueryType        *DocumentName       `json:"queryType"`
	MutationType     *DocumentName       `json:"mutationType"`
	SubscriptionType *DocumentName       `json:"subscriptionType"`
	Types            []DocumentType      `json:"types"`
	Directives       []DocumentDirective `json:"directives"`
}

type DocumentName struct {
	Name string `json:"name"`
}

type DocumentType struct {
	Kind          string               `json:"kind"`
	Name          string               `json:"name"`
	Description   *string              `json:"description"`
	Fields        []DocumentField      `json:"fields"`
	InputFields   []DocumentInputValue `json:"inputFields"`
	Interfaces    []DocumentTypeRef    `json:"interfaces"`
	EnumValues    []DocumentEnumValue  `json:"enumValues"`
	PossibleTypes []DocumentTypeRef    `json:"possibleTypes"`
}

type DocumentField struct {
	Name              string               `json:"name"`
	Description       *string              `json:"description"`
	Args              []DocumentInputValue `json:"args"`
	Type              *DocumentTypeRef     `json:"type"`
	IsDeprecated      bool                 `json:"isDeprecated"`
	DeprecationReason *string              `json:"deprecationReason"`
}

type DocumentInputValue struct {
	Name              string           `json:"name"`
	Description       *string          `json:"description"`
	Type              *DocumentTypeRef `json:"type"`
	DefaultValue      *string          `json:"defaultValue"`
	IsDeprecated      bool             `json:"isDeprecated"`
	DeprecationReason *string          `json:"deprecationReason"`
}

type DocumentTypeRef struct {
	Kind   string           `json:"kind"`
	Name   *string          `json:"name"`
	OfType *DocumentTypeRef `json:"ofType"`
}

type DocumentEnumValue struct {
	Name              string  `json:"name"`
	Description       *string `json:"description"`
	IsDeprecated      bool    `json:"isDeprecated"`
	DeprecationReason *string `json:"deprecationReason"`
}

type DocumentDirective struct {
	Name         string               `json:"name"`
	Description  *string              `json:"description"`
	Locations    []string             `json:"locations"`
	Args         []DocumentInputValue `json:"args"`
	IsRepeatable bool                 `json:"isRepeatable"`
}

// envelope accepts {"data": {"__schema": ...}}, {"__schema": ...} and the bare schema object.
type envelope struct {
	Data *struct {
		Schema *Document `json:"__schema"`
	} `json:"data"`
	Schema *Document `json:"__schema"`
	Document
}

func (e *envelope) document() *Document {
	switch {
	case e.Data != nil && e.Data.Schema != nil:
		return e.Data.Schema
	case e.Schema != nil:
		return e.Schema
	default:
		return &e.Document
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
