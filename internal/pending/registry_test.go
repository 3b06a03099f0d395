package pending

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginReturnsNewLength(t *testing.T) {
	reg := New()
	assert.Equal(t, 1, reg.Begin("a"))
	assert.Equal(t, 2, reg.Begin("b"))
	assert.Equal(t, 3, reg.Begin("a"))
	assert.Equal(t, []string{"a", "b", "a"}, reg.Pending())
}

func TestBeginNoIDIsQueryOnly(t *testing.T) {
	reg := New()
	assert.Equal(t, 0, reg.Begin(NoID))
	reg.Begin("x")
	assert.Equal(t, 1, reg.Begin(NoID))
	assert.Equal(t, 1, reg.Count())
}

func TestEndRemovesFirstOccurrence(t *testing.T) {
	reg := New()
	reg.Begin("a")
	reg.Begin("b")
	reg.Begin("a")

	assert.Equal(t, 2, reg.End("a"))
	assert.Equal(t, []string{"b", "a"}, reg.Pending())
	assert.Equal(t, []string{"a"}, reg.Completed())
}

func TestEndUnknownIsNoop(t *testing.T) {
	reg := New()
	reg.Begin("a")

	assert.Equal(t, 1, reg.End("never-begun"))
	assert.Equal(t, 1, reg.Count())
	assert.Empty(t, reg.Completed())

	// A second End for an id that was already resolved is silent too.
	assert.Equal(t, 0, reg.End("a"))
	assert.Equal(t, 0, reg.End("a"))
	assert.Equal(t, []string{"a"}, reg.Completed())
}

func TestRoundTripAnyOrder(t *testing.T) {
	const n = 50
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("op-%d", i)
	}

	reg := New()
	for _, id := range ids {
		reg.Begin(id)
	}
	require.Equal(t, n, reg.Count())

	rnd := rand.New(rand.NewSource(7))
	rnd.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	for _, id := range ids {
		reg.End(id)
	}
	assert.Equal(t, 0, reg.Count())
	assert.Len(t, reg.Completed(), n)
}

func TestCountMatchesBeginsMinusMatchedEnds(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	reg := New()
	model := map[string]int{}
	want := 0

	for i := 0; i < 500; i++ {
		id := fmt.Sprintf("id-%d", rnd.Intn(8))
		if rnd.Intn(2) == 0 {
			reg.Begin(id)
			model[id]++
			want++
		} else {
			reg.End(id)
			if model[id] > 0 {
				model[id]--
				want--
			}
		}
		require.Equal(t, want, reg.Count(), "step %d", i)
	}
}

func TestConcurrentBeginEnd(t *testing.T) {
	reg := New()
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("io:%d", i)
			reg.Begin(id)
			reg.End(id)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 0, reg.Count())
	assert.Len(t, reg.Completed(), 64)
}

func TestObserverSeesEvents(t *testing.T) {
	reg := New()
	var events []Event
	reg.Observe(func(e Event) { events = append(events, e) })

	reg.Begin("a")
	reg.End("missing")
	reg.End("a")

	require.Len(t, events, 2)
	assert.Equal(t, EventBegin, events[0].Kind)
	assert.Equal(t, 1, events[0].Count)
	assert.Equal(t, EventEnd, events[1].Kind)
	assert.Equal(t, "a", events[1].ID)
	assert.Equal(t, 0, events[1].Count)
}

func TestSubscribeLatestWins(t *testing.T) {
	reg := New()
	ch, cancel := reg.Subscribe()
	defer cancel()

	reg.Begin("a")
	reg.Begin("b")
	reg.Begin("c")

	assert.Equal(t, 3, <-ch)
	select {
	case n := <-ch:
		t.Fatalf("unexpected extra value %d", n)
	default:
	}
}

func TestSubscribeCancelClosesChannel(t *testing.T) {
	reg := New()
	ch, cancel := reg.Subscribe()
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	// Changes after cancel must not panic on the closed channel.
	reg.Begin("a")
}

func TestWaitIdleReturnsImmediatelyWhenIdle(t *testing.T) {
	reg := New()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, reg.WaitIdle(ctx))
}

func TestWaitIdleUnblocksOnEnd(t *testing.T) {
	reg := New()
	reg.Begin(InitID)

	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		done <- reg.WaitIdle(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	reg.End(InitID)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("WaitIdle did not return")
	}
}

func TestWaitIdleTimesOut(t *testing.T) {
	reg := New()
	reg.Begin("stuck")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, reg.WaitIdle(ctx), context.DeadlineExceeded)
	assert.Equal(t, 1, reg.Count())
}
