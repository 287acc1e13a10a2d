package schema

import (
	"fmt"
	"strings"
	"text/template"
)

// IntrospectionOperationName is the operation name of the introspection query.
const IntrospectionOperationName = "IntrospectionQuery"

type queryOptions struct {
	OmitDescriptions      bool
	DirectiveIsRepeatable bool
	InputValueDeprecation bool
}

// QueryOption configures IntrospectionQuery.
type QueryOption func(*queryOptions)

// OmitDescriptions drops descriptions from the introspection result.
func OmitDescriptions() QueryOption {
	return func(o *queryOptions) { o.OmitDescriptions = true }
}

// WithDirectiveIsRepeatable asks for __Directive.isRepeatable. Servers
// predating the October 2021 GraphQL release reject it.
func WithDirectiveIsRepeatable() QueryOption {
	return func(o *queryOptions) { o.DirectiveIsRepeatable = true }
}

// WithInputValueDeprecation asks for deprecated arguments and input fields.
func WithInputValueDeprecation() QueryOption {
	return func(o *queryOptions) { o.InputValueDeprecation = true }
}

var queryTemplate = template.Must(template.New(IntrospectionOperationName).Parse(`
{{- define "description"}}{{if not .OmitDescriptions}}description{{end}}{{end -}}
{{- define "deprecatedArgs"}}{{if .InputValueDeprecation}}(includeDeprecated: true){{end}}{{end -}}
query IntrospectionQuery {
  __schema {
    queryType { name }
    mutationType { name }
    subscriptionType { name }
    types {
      ...FullType
    }
    directives {
      name
      {{template "description" .}}
      {{if .DirectiveIsRepeatable}}isRepeatable{{end}}
      locations
      args{{template "deprecatedArgs" .}} {
        ...InputValue
      }
    }
  }
}

fragment FullType on __Type {
  kind
  name
  {{template "description" .}}
  fields(includeDeprecated: true) {
    name
    {{template "description" .}}
    args{{template "deprecatedArgs" .}} {
      ...InputValue
    }
    type {
      ...TypeRef
    }
    isDeprecated
    deprecationReason
  }
  inputFields{{template "deprecatedArgs" .}} {
    ...InputValue
  }
  interfaces {
    ...TypeRef
  }
  enumValues(includeDeprecated: true) {
    name
    {{template "description" .}}
    isDeprecated
    deprecationReason
  }
  possibleTypes {
    ...TypeRef
  }
}

fragment InputValue on __InputValue {
  name
  {{template "description" .}}
  type { ...TypeRef }
  defaultValue
  {{if .InputValueDeprecation}}isDeprecated
  deprecationReason{{end}}
}

fragment TypeRef on __Type {
  kind
  name
  ofType {
    kind
    name
    ofType {
      kind
      name
      ofType {
        kind
        name
        ofType {
          kind
          name
          ofType {
            kind
            name
            ofType {
              kind
              name
              ofType {
                kind
                name
              }
            }
          }
        }
      }
    }
  }
}
`))

// IntrospectionQuery returns the document that fetches everything Parse reads.
func IntrospectionQuery(opts ...QueryOption) string {
	var config queryOptions
	for _, opt := range opts {
		opt(&config)
	}
	var b strings.Builder
	if err := queryTemplate.Execute(&b, &config); err != nil {
		panic(fmt.Sprintf("schema: introspection query template with %+v: %s", config, err))
	}
	return b.String()
}
