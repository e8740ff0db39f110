package pkg

import "testing"

func TestNATSSubscriberConnectsLazily(t *testing.T) {
	// RetryOnFailedConnect means an unreachable broker must not error at
	// construction; the terminal comes up and retries in the background.
	sub, err := NewNATSSubscriber("nats://127.0.0.1:1",
		func(error) {},
		func() {})
	if err != nil {
		t.Fatalf("subscriber must tolerate an unreachable broker: %v", err)
	}
	if err := sub.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestNATSSubscriberNilHandlers(t *testing.T) {
	sub, err := NewNATSSubscriber("nats://127.0.0.1:1", nil, nil)
	if err != nil {
		t.Fatalf("subscriber with no handlers: %v", err)
	}
	sub.Close()
}
