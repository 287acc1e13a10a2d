package eventbus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type ping struct{ n int }
type pong struct{ n int }

func TestDispatchByType(t *testing.T) {
	b := New()
	var pings, pongs []int
	SubscribeTo(b, func(_ context.Context, e ping) { pings = append(pings, e.n) })
	SubscribeTo(b, func(_ context.Context, e pong) { pongs = append(pongs, e.n) })

	PublishTo(context.Background(), b, ping{1})
	PublishTo(context.Background(), b, pong{2})
	PublishTo(context.Background(), b, ping{3})

	require.Equal(t, []int{1, 3}, pings)
	require.Equal(t, []int{2}, pongs)
}

func TestUnsubscribeRemovesOnlyItsHandler(t *testing.T) {
	b := New()
	var got []string
	first := SubscribeTo(b, func(context.Context, ping) { got = append(got, "first") })
	SubscribeTo(b, func(context.Context, ping) { got = append(got, "second") })

	first()
	first()
	PublishTo(context.Background(), b, ping{})
	require.Equal(t, []string{"second"}, got)
}

func TestGlobalBus(t *testing.T) {
	t.Cleanup(func() { Use(nil) })

	Use(nil)
	require.False(t, Enabled())
	Publish(context.Background(), ping{1}) // no bus, no panic
	Subscribe(func(context.Context, ping) { t.Fatal("handler registered without a bus") })()

	Use(New())
	require.True(t, Enabled())
	var n int
	unsubscribe := Subscribe(func(_ context.Context, e ping) { n += e.n })
	Publish(context.Background(), ping{2})
	unsubscribe()
	Publish(context.Background(), ping{5})
	require.Equal(t, 2, n)
}
