package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hanpama/gqlclient/internal/schematest"
	"github.com/stretchr/testify/require"
)

func TestParseStarWars(t *testing.T) {
	s, err := Parse(schematest.StarWars)
	require.NoError(t, err)

	require.Equal(t, "Query", s.GetQueryType().Name)
	require.Equal(t, "Mutation", s.GetMutationType().Name)
	require.Equal(t, "Subscription", s.GetSubscriptionType().Name)

	human, ok := s.Type("Human")
	require.True(t, ok)
	require.Equal(t, TypeKindObject, human.Kind)
	require.Equal(t, []string{"Character"}, human.Interfaces)

	friends, ok := human.Field("friends")
	require.True(t, ok)
	require.Equal(t, "[Human]", friends.Type.String())
	require.Same(t, human, friends.OutputType(s))
	require.True(t, friends.Type.IsObjectKind())

	height, _ := human.Field("height")
	unit, ok := height.Argument("unit")
	require.True(t, ok)
	require.Equal(t, "METER", *unit.DefaultValue)
	require.Equal(t, TypeKindEnum, unit.Type.LeafKind())

	mass, _ := human.Field("mass")
	require.True(t, mass.IsDeprecated)
	require.Equal(t, "Use weight.", mass.DeprecationReason)

	search, _ := s.GetQueryType().Field("search")
	require.Equal(t, "[SearchResult!]!", search.Type.String())
	require.Equal(t, 3, search.Type.Depth())
	require.Equal(t, TypeKindUnion, search.Type.LeafType(s).Kind)

	union, _ := s.Type("SearchResult")
	require.Equal(t, []string{"Human", "Droid", "Starship"}, union.PossibleTypes)

	input, _ := s.Type("ReviewInput")
	stars, ok := input.InputField("stars")
	require.True(t, ok)
	require.Equal(t, "Int!", stars.Type.String())

	include, ok := s.Directive("include")
	require.True(t, ok)
	cond, ok := include.Argument("if")
	require.True(t, ok)
	require.Equal(t, "Boolean!", cond.Type.String())
}

// Every declared type, field and argument name survives parsing.
func TestParseRoundTripNames(t *testing.T) {
	var env envelope
	require.NoError(t, json.Unmarshal(schematest.StarWars, &env))
	doc := env.document()

	s, err := ParseDocument(doc)
	require.NoError(t, err)

	for _, dt := range doc.Types {
		typ, ok := s.Type(dt.Name)
		require.True(t, ok, dt.Name)

		var want, got []string
		for _, f := range dt.Fields {
			want = append(want, f.Name)
			for _, a := range f.Args {
				want = append(want, f.Name+"."+a.Name)
			}
		}
		for _, f := range typ.Fields {
			got = append(got, f.Name)
			for _, a := range f.Arguments {
				got = append(got, f.Name+"."+a.Name)
			}
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s fields mismatch (-want +got):\n%s", dt.Name, diff)
		}
	}
}

func TestParseEnvelopes(t *testing.T) {
	const body = `{"queryType":{"name":"Query"},"types":[{"kind":"OBJECT","name":"Query","fields":[{"name":"ok","args":[],"type":{"kind":"SCALAR","name":"Boolean"}}]}]}`
	tests := map[string]string{
		"bare":   body,
		"schema": `{"__schema":` + body + `}`,
		"data":   `{"data":{"__schema":` + body + `}}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			s, err := Parse([]byte(raw))
			require.NoError(t, err)
			require.NotNil(t, s.GetQueryType())
			require.Nil(t, s.GetMutationType())
			require.Nil(t, s.GetSubscriptionType())
			_, ok := s.Type("Boolean")
			require.True(t, ok, "specified scalars are backfilled")
			_, ok = s.Directive("skip")
			require.True(t, ok, "skip directive is backfilled")
		})
	}
}

func TestParseNoTypes(t *testing.T) {
	for _, raw := range []string{`{}`, `{"__schema":{"types":[]}}`, `{"data":{"__schema":{"queryType":{"name":"Query"}}}}`} {
		_, err := Parse([]byte(raw))
		require.ErrorIs(t, err, ErrNoTypes, raw)
		var perr *ParseError
		require.True(t, errors.As(err, &perr))
	}
}

func TestParseInvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`{"__schema":`))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func wrapped(depth int) string {
	ref := `{"kind":"SCALAR","name":"String"}`
	for i := 0; i < depth; i++ {
		kind := "LIST"
		if i%2 == 0 {
			kind = "NON_NULL"
		}
		ref = `{"kind":"` + kind + `","ofType":` + ref + `}`
	}
	return `{"types":[{"kind":"OBJECT","name":"Query","fields":[{"name":"deep","args":[],"type":` + ref + `}]}]}`
}

func TestParseTypeRefDepth(t *testing.T) {
	s, err := Parse([]byte(wrapped(MaxTypeRefDepth)))
	require.NoError(t, err)
	deep, _ := s.Types["Query"].Field("deep")
	require.Equal(t, MaxTypeRefDepth, deep.Type.Depth())
	require.Equal(t, "String", deep.Type.NamedType())

	_, err = Parse([]byte(wrapped(MaxTypeRefDepth + 1)))
	require.ErrorIs(t, err, ErrTypeRefTooDeep)
	require.Contains(t, err.Error(), "Query.deep")
}

func TestParseMalformedTypeRef(t *testing.T) {
	raw := `{"types":[{"kind":"OBJECT","name":"Query","fields":[{"name":"x","args":[],"type":{"kind":"NON_NULL","ofType":null}}]}]}`
	_, err := Parse([]byte(raw))
	require.ErrorIs(t, err, ErrMalformedTypeRef)
}

func TestParseDanglingReference(t *testing.T) {
	raw := `{"types":[{"kind":"OBJECT","name":"Query","fields":[{"name":"x","args":[],"type":{"kind":"OBJECT","name":"Missing"}}]}]}`
	_, err := Parse([]byte(raw))
	require.ErrorIs(t, err, ErrUnknownType)
	require.Contains(t, err.Error(), `"Missing"`)
}

func TestParseUnknownRoot(t *testing.T) {
	raw := `{"queryType":{"name":"Root"},"types":[{"kind":"OBJECT","name":"Query","fields":[]}]}`
	_, err := Parse([]byte(raw))
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestParseDuplicateTypeLastWins(t *testing.T) {
	raw := `{"types":[
		{"kind":"OBJECT","name":"Query","fields":[{"name":"first","args":[],"type":{"kind":"SCALAR","name":"Int"}}]},
		{"kind":"OBJECT","name":"Query","fields":[{"name":"second","args":[],"type":{"kind":"SCALAR","name":"Int"}}]}
	]}`
	s, err := Parse([]byte(raw))
	require.NoError(t, err)
	require.Equal(t, []string{"second"}, s.Types["Query"].FieldNames())
}

func TestTypeRefString(t *testing.T) {
	str := NamedType(TypeKindScalar, "String")
	tests := []struct {
		ref  *TypeRef
		want string
	}{
		{str, "String"},
		{NonNullType(str), "String!"},
		{ListType(str), "[String]"},
		{ListType(NonNullType(str)), "[String!]"},
		{NonNullType(ListType(NonNullType(str))), "[String!]!"},
		{ListType(ListType(str)), "[[String]]"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.ref.String())
		require.Equal(t, "String", tt.ref.NamedType())
		require.True(t, tt.ref.IsScalarKind())
		require.False(t, tt.ref.IsObjectKind())
	}
	require.True(t, NonNullType(ListType(str)).IsList())
	require.False(t, NonNullType(str).IsList())
	require.Equal(t, str, NonNullType(str).Unwrap())
}

func TestParseErrorMessage(t *testing.T) {
	_, err := Parse([]byte(`{"types":[{"kind":"WIDGET","name":"Query"}]}`))
	require.ErrorIs(t, err, ErrInvalidKind)
	require.True(t, strings.HasPrefix(err.Error(), "schema: parse Query:"), err.Error())
}
