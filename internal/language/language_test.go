package language

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseQuery(t *testing.T) {
	doc, err := ParseQuery(`query human($id: ID!) { human(id: $id) { name } me: version }`)
	require.NoError(t, err)
	require.Equal(t, []OperationSummary{
		{Name: "human", Operation: Query, Fields: []string{"human", "me"}},
	}, Summarize(doc))
}

func TestParseQuerySyntaxError(t *testing.T) {
	_, err := ParseQuery("query { human(id: ) }")
	var se *SyntaxError
	require.True(t, errors.As(err, &se))
	require.Equal(t, 1, se.Line)
	require.Positive(t, se.Column)
	require.True(t, strings.HasPrefix(err.Error(), "syntax error at 1:"))
}

func TestParseSchema(t *testing.T) {
	doc, err := ParseSchema("test.graphql", "type Query { version: String }")
	require.NoError(t, err)
	require.Len(t, doc.Definitions, 1)

	_, err = ParseSchema("test.graphql", "type Query {")
	require.Error(t, err)
}

func TestFormatQuery(t *testing.T) {
	out, err := FormatQuery("subscription reviewAdded { reviewAdded { stars } }")
	require.NoError(t, err)
	require.Contains(t, out, "subscription reviewAdded {")
	require.Contains(t, out, "stars")

	_, err = FormatQuery("{")
	require.Error(t, err)
}
