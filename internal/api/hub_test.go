package api

import (
	"sync"
	"testing"
	"time"
)

func TestHub_SubscribeUnsubscribe(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	sub := hub.Subscribe()
	if sub == nil {
		t.Fatal("Subscribe returned nil")
	}

	select {
	case <-sub.Done():
		t.Error("Done channel should not be closed")
	default:
	}

	hub.Unsubscribe(sub)

	select {
	case <-sub.Done():
		// Expected
	case <-time.After(100 * time.Millisecond):
		t.Error("Done channel should be closed after unsubscribe")
	}
}

func TestHub_Publish(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	n := &Notice{Events: 12, Checksum: "abc123"}
	hub.Publish(n)

	select {
	case received := <-sub.Notices():
		if received.Checksum != n.Checksum {
			t.Errorf("expected checksum %q, got %q", n.Checksum, received.Checksum)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for notice")
	}
}

func TestHub_PublishToMultipleSubscribers(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	const numSubscribers = 5
	subs := make([]*Subscriber, numSubscribers)
	for i := 0; i < numSubscribers; i++ {
		subs[i] = hub.Subscribe()
	}
	defer func() {
		for _, sub := range subs {
			hub.Unsubscribe(sub)
		}
	}()

	n := &Notice{Events: 3, Checksum: "deadbeef"}
	hub.Publish(n)

	var wg sync.WaitGroup
	for i, sub := range subs {
		wg.Add(1)
		go func(i int, sub *Subscriber) {
			defer wg.Done()
			select {
			case received := <-sub.Notices():
				if received.Checksum != n.Checksum {
					t.Errorf("subscriber %d: expected checksum %q, got %q", i, n.Checksum, received.Checksum)
				}
			case <-time.After(100 * time.Millisecond):
				t.Errorf("subscriber %d: timeout waiting for notice", i)
			}
		}(i, sub)
	}
	wg.Wait()
}

func TestHub_PublishWithFullChannel(t *testing.T) {
	hub := NewHub(WithHubSubscriberBufferSize(1))
	go hub.Run()
	defer hub.Stop()

	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	hub.Publish(&Notice{Checksum: "first"})

	// Wait for the notice to reach the subscriber buffer
	time.Sleep(10 * time.Millisecond)

	// Buffer is full and nobody is reading, so this one is dropped
	hub.Publish(&Notice{Checksum: "second"})

	time.Sleep(10 * time.Millisecond)

	select {
	case n := <-sub.Notices():
		if n.Checksum != "first" {
			t.Errorf("expected first notice, got %q", n.Checksum)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for first notice")
	}

	select {
	case n := <-sub.Notices():
		t.Errorf("did not expect second notice, got %q", n.Checksum)
	case <-time.After(50 * time.Millisecond):
		// Expected - second notice was dropped
	}
}

func TestHub_PublishNil(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	hub.Publish(nil)

	select {
	case n := <-sub.Notices():
		t.Errorf("did not expect notice, got %v", n)
	case <-time.After(50 * time.Millisecond):
		// Expected - no notice
	}
}

func TestHub_Stop(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	sub1 := hub.Subscribe()
	sub2 := hub.Subscribe()

	hub.Stop()

	select {
	case <-sub1.Done():
		// Expected
	case <-time.After(100 * time.Millisecond):
		t.Error("sub1 Done channel should be closed after Stop")
	}

	select {
	case <-sub2.Done():
		// Expected
	case <-time.After(100 * time.Millisecond):
		t.Error("sub2 Done channel should be closed after Stop")
	}
}

func TestHub_SubscribeAfterStop(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	hub.Stop()

	sub := hub.Subscribe()

	select {
	case <-sub.Done():
		// Expected - already closed
	default:
		t.Error("subscriber Done channel should be closed when hub is stopped")
	}
}

func TestHub_PublishAfterStop(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	hub.Stop()

	// Should not panic
	hub.Publish(&Notice{Checksum: "late"})
}

func TestHub_StopIdempotent(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	hub.Stop()
	hub.Stop()

	hub2 := NewHub()
	go hub2.Run()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub2.Stop()
		}()
	}
	wg.Wait()
}
