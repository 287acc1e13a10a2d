package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewResponseDecodesErrors(t *testing.T) {
	var raw Payload
	require.NoError(t, json.Unmarshal([]byte(`{
		"data": {"hero": null},
		"errors": [{"message": "not found", "path": ["hero", 0], "locations": [{"line": 1, "column": 9}]}],
		"extensions": {"cost": 3}
	}`), &raw))

	resp := NewResponse(nil, raw)
	require.Equal(t, map[string]any{"hero": nil}, resp.Data)
	require.Equal(t, map[string]any{"cost": float64(3)}, resp.Extensions)
	require.Len(t, resp.Errors, 1)
	require.Equal(t, []Location{{Line: 1, Column: 9}}, resp.Errors[0].Locations)
	require.EqualError(t, resp.Err(), "hero.0: not found")
	require.False(t, resp.IsStream())
}

func TestRequestBody(t *testing.T) {
	req := &Request{Query: "{ version }"}
	require.Equal(t, map[string]any{"query": "{ version }", "variables": map[string]any{}}, req.Body())

	req = &Request{Query: "query version { version }", OperationName: "version", Variables: map[string]any{"a": 1}}
	require.Equal(t, map[string]any{
		"query":         "query version { version }",
		"variables":     map[string]any{"a": 1},
		"operationName": "version",
	}, req.Body())
}

func TestPlainResponseIsNotAStream(t *testing.T) {
	resp := NewResponse(nil, nil)
	_, err := resp.Next(context.Background())
	require.ErrorIs(t, err, ErrNotStream)
	for _, err := range resp.All(context.Background()) {
		require.ErrorIs(t, err, ErrNotStream)
	}
	require.NoError(t, resp.Close())
}

func TestAllClosesStreamOnBreak(t *testing.T) {
	stream := NewSliceStream(Payload{"data": map[string]any{"n": 1}}, Payload{"data": map[string]any{"n": 2}})
	resp := NewStreamResponse(nil, stream)
	for msg, err := range resp.All(context.Background()) {
		require.NoError(t, err)
		require.Equal(t, 1, msg.Data["n"])
		break
	}
	_, err := resp.Next(context.Background())
	require.ErrorIs(t, err, Done)
}

func TestChanStream(t *testing.T) {
	c := make(chan Payload, 2)
	c <- Payload{"data": map[string]any{"n": 1}}
	close(c)
	stopped := false
	s := &ChanStream{C: c, OnStop: func() error { stopped = true; return nil }}

	p, err := s.Next(context.Background())
	require.NoError(t, err)
	require.NotNil(t, p)
	_, err = s.Next(context.Background())
	require.ErrorIs(t, err, Done)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	require.True(t, stopped)
}
