//go:build linux

package dhcp4time

import (
	"testing"
	"time"
)

func TestNowMicroIsMonotonicallyNondecreasing(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	a, err := c.NowMicro()
	if err != nil {
		t.Fatalf("NowMicro: %v", err)
	}
	time.Sleep(time.Millisecond)
	b, err := c.NowMicro()
	if err != nil {
		t.Fatalf("NowMicro: %v", err)
	}
	if b < a {
		t.Fatalf("NowMicro went backwards: %d then %d", a, b)
	}
}

func TestDrainWithNothingArmedIsZero(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	n, err := c.Drain()
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if n != 0 {
		t.Fatalf("Drain on disarmed timer = %d, want 0", n)
	}
}

func TestArmFiresAndDrainReportsExpiration(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	now, err := c.NowMicro()
	if err != nil {
		t.Fatalf("NowMicro: %v", err)
	}
	deadline := now + 5_000 // 5ms
	if err := c.Arm(deadline); err != nil {
		t.Fatalf("Arm: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	n, err := c.Drain()
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if n == 0 {
		t.Fatal("Drain reported no expiration after deadline elapsed")
	}

	// Draining again before rearming yields nothing further.
	n2, err := c.Drain()
	if err != nil {
		t.Fatalf("second Drain: %v", err)
	}
	if n2 != 0 {
		t.Fatalf("second Drain = %d, want 0", n2)
	}
}

func TestArmZeroDisarms(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	now, err := c.NowMicro()
	if err != nil {
		t.Fatalf("NowMicro: %v", err)
	}
	if err := c.Arm(now + 5_000); err != nil {
		t.Fatalf("Arm: %v", err)
	}
	if err := c.Arm(0); err != nil {
		t.Fatalf("Arm(0): %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	n, err := c.Drain()
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if n != 0 {
		t.Fatalf("Drain after disarm = %d, want 0", n)
	}
}
