package infrastructure

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

func waitForCount(t *testing.T, mu *sync.Mutex, got *[]string, want int) {
	t.Helper()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(*got)
		mu.Unlock()
		if n >= want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d events", want)
}

func TestChannelEventBus_PreservesPublishOrderAcrossTypes(t *testing.T) {
	bus := NewChannelEventBus(10)
	defer bus.Close()

	var mu sync.Mutex
	var got []string
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, s)
	}

	bus.OnTrackStarted(func(_ context.Context, e domain.TrackStartedEvent) {
		record("start:" + e.Encoded)
	})
	bus.OnTrackEnded(func(_ context.Context, e domain.TrackEndedEvent) {
		record("end:" + e.Encoded)
	})
	bus.OnNodeLinkLost(func(_ context.Context, e domain.NodeLinkLostEvent) {
		record("lost:" + e.NodeName)
	})

	guildID := snowflake.ID(1)
	bus.PublishTrackStarted(domain.TrackStartedEvent{GuildID: guildID, Encoded: "a"})
	bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: guildID, Encoded: "a"})
	bus.PublishNodeLinkLost(domain.NodeLinkLostEvent{NodeName: "main"})
	bus.PublishTrackStarted(domain.TrackStartedEvent{GuildID: guildID, Encoded: "b"})

	waitForCount(t, &mu, &got, 4)

	mu.Lock()
	defer mu.Unlock()
	want := []string{"start:a", "end:a", "lost:main", "start:b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestChannelEventBus_MultipleHandlers(t *testing.T) {
	bus := NewChannelEventBus(10)
	defer bus.Close()

	var mu sync.Mutex
	var got []string
	for _, name := range []string{"first", "second"} {
		bus.OnTrackEnded(func(context.Context, domain.TrackEndedEvent) {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, name)
		})
	}

	bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: 1, Reason: domain.TrackEndFinished})
	waitForCount(t, &mu, &got, 2)

	mu.Lock()
	defer mu.Unlock()
	if got[0] != "first" || got[1] != "second" {
		t.Errorf("expected handlers in registration order, got %v", got)
	}
}

func TestChannelEventBus_PublishNeverBlocks(t *testing.T) {
	bus := NewChannelEventBus(1)
	defer bus.Close()

	block := make(chan struct{})
	bus.OnTrackStarted(func(context.Context, domain.TrackStartedEvent) {
		<-block
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 10 {
			bus.PublishTrackStarted(domain.TrackStartedEvent{GuildID: 1})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full buffer")
	}
	close(block)
}

// fillBus parks the dispatcher in a track start handler and fills the
// one-slot buffer behind it. Closing the returned channel releases the
// handler.
func fillBus(t *testing.T, bus *ChannelEventBus) chan struct{} {
	t.Helper()

	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	bus.OnTrackStarted(func(context.Context, domain.TrackStartedEvent) {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
	})

	bus.PublishTrackStarted(domain.TrackStartedEvent{GuildID: 1, Encoded: "a"})
	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("dispatcher never picked up the first event")
	}
	bus.PublishTrackStarted(domain.TrackStartedEvent{GuildID: 1, Encoded: "b"})

	return release
}

func TestChannelEventBus_TrackEndedWaitsForBufferSpace(t *testing.T) {
	bus := NewChannelEventBus(1)
	defer bus.Close()

	ended := make(chan domain.TrackEndedEvent, 1)
	bus.OnTrackEnded(func(_ context.Context, e domain.TrackEndedEvent) {
		ended <- e
	})

	release := fillBus(t, bus)

	published := make(chan struct{})
	go func() {
		defer close(published)
		bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: 1, Encoded: "a", Reason: domain.TrackEndFinished})
	}()

	select {
	case <-published:
		t.Fatal("expected track end publish to wait while the buffer is full")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)

	select {
	case e := <-ended:
		if e.Encoded != "a" || e.Reason != domain.TrackEndFinished {
			t.Errorf("unexpected event delivered: %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("track end event was dropped")
	}
	<-published
}

func TestChannelEventBus_TrackEndedGivesUpAfterTimeout(t *testing.T) {
	bus := NewChannelEventBus(1)
	bus.trackEndedTimeout = 20 * time.Millisecond
	defer bus.Close()

	release := fillBus(t, bus)
	defer close(release)

	done := make(chan struct{})
	go func() {
		defer close(done)
		bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: 1})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("track end publish did not give up after its timeout")
	}
}

func TestChannelEventBus_CloseReleasesWaitingPublisher(t *testing.T) {
	bus := NewChannelEventBus(1)

	release := fillBus(t, bus)

	done := make(chan struct{})
	go func() {
		defer close(done)
		bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: 1})
	}()

	// Let the publisher start waiting.
	time.Sleep(20 * time.Millisecond)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		bus.Close()
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiting publisher was not released by close")
	}

	// Close waits for the dispatcher, which is still parked in the handler.
	close(release)
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("close did not return")
	}
}

func TestChannelEventBus_PublishAfterClose(t *testing.T) {
	bus := NewChannelEventBus(1)

	called := false
	bus.OnTrackStarted(func(context.Context, domain.TrackStartedEvent) {
		called = true
	})

	bus.Close()
	bus.Close()

	bus.PublishTrackStarted(domain.TrackStartedEvent{GuildID: 1})
	if called {
		t.Error("expected no delivery after close")
	}
}
