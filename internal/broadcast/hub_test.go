package broadcast

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dominopro/dominopro-server/internal/domain"
)

func stateWithPin(pin string) *domain.LeagueState {
	s := domain.NewInitialState()
	s.AdminPin = pin
	return s
}

// collector records every document an endpoint receives.
type collector struct {
	mu   sync.Mutex
	got  []string
	seen chan struct{}
}

func newCollector() *collector {
	return &collector{seen: make(chan struct{}, 16)}
}

func (c *collector) handle(s *domain.LeagueState, _ time.Time) {
	c.mu.Lock()
	c.got = append(c.got, s.AdminPin)
	c.mu.Unlock()
	c.seen <- struct{}{}
}

func (c *collector) pins() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.got...)
}

func (c *collector) wait(t *testing.T) {
	t.Helper()
	select {
	case <-c.seen:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for broadcast")
	}
}

func TestPublish_ReachesOtherContextsOnly(t *testing.T) {
	hub := NewHub(nil, 8)
	defer hub.Shutdown(context.Background())

	a := hub.Join(DefaultChannel)
	b := hub.Join(DefaultChannel)
	c := hub.Join(DefaultChannel)
	other := hub.Join("OTHER")

	ca, cb, cc, co := newCollector(), newCollector(), newCollector(), newCollector()
	a.Subscribe(ca.handle)
	b.Subscribe(cb.handle)
	c.Subscribe(cc.handle)
	other.Subscribe(co.handle)

	require.NoError(t, a.Publish(stateWithPin("1111")))
	cb.wait(t)
	cc.wait(t)

	// Flush a's queue with a message from b to prove nothing from a is pending.
	require.NoError(t, b.Publish(stateWithPin("2222")))
	ca.wait(t)
	cc.wait(t)

	assert.Equal(t, []string{"2222"}, ca.pins())
	assert.Equal(t, []string{"1111"}, cb.pins())
	assert.Equal(t, []string{"1111", "2222"}, cc.pins())
	assert.Empty(t, co.pins())
	assert.Equal(t, 3, hub.Contexts(DefaultChannel))
}

func TestPublish_DropsWhenQueueFull(t *testing.T) {
	hub := NewHub(nil, 1)
	defer hub.Shutdown(context.Background())

	sender := hub.Join(DefaultChannel)
	slow := hub.Join(DefaultChannel)

	entered := make(chan struct{}, 4)
	release := make(chan struct{})
	var mu sync.Mutex
	var received []string
	slow.Subscribe(func(s *domain.LeagueState, _ time.Time) {
		mu.Lock()
		received = append(received, s.AdminPin)
		mu.Unlock()
		entered <- struct{}{}
		<-release
	})

	require.NoError(t, sender.Publish(stateWithPin("0001")))
	<-entered

	require.NoError(t, sender.Publish(stateWithPin("0002"))) // queued
	require.NoError(t, sender.Publish(stateWithPin("0003"))) // dropped

	close(release)
	<-entered

	select {
	case <-entered:
		t.Fatal("dropped message was delivered")
	case <-time.After(100 * time.Millisecond):
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"0001", "0002"}, received)
}

func TestSubscribe_EachHandlerGetsItsOwnCopy(t *testing.T) {
	hub := NewHub(nil, 8)
	defer hub.Shutdown(context.Background())

	a := hub.Join(DefaultChannel)
	b := hub.Join(DefaultChannel)

	b.Subscribe(func(s *domain.LeagueState, _ time.Time) { s.AdminPin = "mutated" })
	cb := newCollector()
	b.Subscribe(cb.handle)

	require.NoError(t, a.Publish(stateWithPin("4321")))
	cb.wait(t)
	assert.Equal(t, []string{"4321"}, cb.pins())
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	hub := NewHub(nil, 8)
	defer hub.Shutdown(context.Background())

	a := hub.Join(DefaultChannel)
	b := hub.Join(DefaultChannel)

	first := newCollector()
	second := newCollector()
	unsubscribe := b.Subscribe(first.handle)
	b.Subscribe(second.handle)

	unsubscribe()
	unsubscribe()

	require.NoError(t, a.Publish(stateWithPin("1234")))
	second.wait(t)
	assert.Empty(t, first.pins())
}

func TestEndpoint_CloseLeavesChannel(t *testing.T) {
	hub := NewHub(nil, 8)
	defer hub.Shutdown(context.Background())

	a := hub.Join(DefaultChannel)
	b := hub.Join(DefaultChannel)
	b.Close()
	b.Close()

	assert.Equal(t, 1, hub.Contexts(DefaultChannel))
	assert.NoError(t, b.Publish(stateWithPin("1234")))
	assert.NoError(t, a.Publish(stateWithPin("1234")))

	select {
	case <-b.Done():
	default:
		t.Fatal("closed endpoint should report done")
	}
}

func TestHub_Shutdown(t *testing.T) {
	hub := NewHub(nil, 8)
	a := hub.Join(DefaultChannel)
	hub.Join(DefaultChannel)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, hub.Shutdown(ctx))

	assert.Zero(t, hub.Contexts(DefaultChannel))
	assert.NoError(t, a.Publish(stateWithPin("1234")))

	late := hub.Join(DefaultChannel)
	<-late.Done()
	assert.Zero(t, hub.Contexts(DefaultChannel))
}
