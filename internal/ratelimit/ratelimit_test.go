package ratelimit

import (
	"testing"
)

func TestAllow_WithinBurst(t *testing.T) {
	krl := New(1, 3)
	defer krl.Stop()

	for i := 0; i < 3; i++ {
		if !krl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed within burst", i)
		}
	}

	if krl.Allow("1.2.3.4") {
		t.Error("request beyond burst should be denied")
	}
}

func TestAllow_IndependentKeys(t *testing.T) {
	krl := New(1, 1)
	defer krl.Stop()

	if !krl.Allow("a") {
		t.Fatal("first request for key a should be allowed")
	}
	if krl.Allow("a") {
		t.Error("second request for key a should be denied")
	}
	if !krl.Allow("b") {
		t.Error("key b should have its own bucket")
	}
}

func TestStop_Idempotent(t *testing.T) {
	krl := New(1, 1)
	krl.Stop()
	krl.Stop() // must not panic
}
