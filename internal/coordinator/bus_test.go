package coordinator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jpelkonen/roam/pkg/api"
)

func TestBusPublishReachesAllListeners(t *testing.T) {
	t.Parallel()

	b := newBus(8, nil)

	var got1, got2 []api.Phase
	b.subscribe(func(s api.State) { got1 = append(got1, s.Phase) })
	b.subscribe(func(s api.State) { got2 = append(got2, s.Phase) })

	b.publish(api.State{Phase: api.PhasePreparing})
	b.publish(api.State{Phase: api.PhaseIdle})

	require.Equal(t, []api.Phase{api.PhasePreparing, api.PhaseIdle}, got1)
	require.Equal(t, got1, got2)
}

func TestBusUnsubscribeStopsDelivery(t *testing.T) {
	t.Parallel()

	b := newBus(8, nil)

	calls := 0
	unsubscribe := b.subscribe(func(api.State) { calls++ })

	b.publish(api.State{})
	unsubscribe()
	unsubscribe() // no-op
	b.publish(api.State{})

	require.Equal(t, 1, calls)
}

func TestBusEvictsOldestListenerAtCap(t *testing.T) {
	t.Parallel()

	b := newBus(2, nil)

	var oldest, second, third int
	b.subscribe(func(api.State) { oldest++ })
	b.subscribe(func(api.State) { second++ })
	b.subscribe(func(api.State) { third++ })

	b.publish(api.State{})

	require.Equal(t, 0, oldest, "oldest listener should be evicted at cap")
	require.Equal(t, 1, second)
	require.Equal(t, 1, third)
}

func TestBusIsolatesPanickingListener(t *testing.T) {
	t.Parallel()

	b := newBus(8, nil)

	var after int
	b.subscribe(func(api.State) { panic("listener bug") })
	b.subscribe(func(api.State) { after++ })

	require.NotPanics(t, func() { b.publish(api.State{}) })
	require.Equal(t, 1, after, "a throwing listener must not break the broadcast loop")
}
