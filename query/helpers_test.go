package query

import (
	"testing"

	"github.com/hanpama/gqlclient/internal/schematest"
	"github.com/hanpama/gqlclient/schema"
	"github.com/stretchr/testify/require"
)

func starWars(t testing.TB) *schema.Schema {
	t.Helper()
	s, err := schema.Parse(schematest.StarWars)
	require.NoError(t, err)
	return s
}

func mustType(t testing.TB, s *schema.Schema, name string) *schema.Type {
	t.Helper()
	typ, ok := s.Type(name)
	require.True(t, ok, "type %s", name)
	return typ
}

func rootField(t testing.TB, s *schema.Schema, op schema.OperationType, name string) *schema.Field {
	t.Helper()
	f, ok := s.RootType(op).Field(name)
	require.True(t, ok, "%s field %s", op, name)
	return f
}
