package dhcp4client

import "testing"

func TestLeaseTimingArmed(t *testing.T) {
	var lt LeaseTiming
	if lt.armed() {
		t.Fatal("zero LeaseTiming reports armed")
	}
	lt.T1 = 100
	if !lt.armed() {
		t.Fatal("LeaseTiming with T1 set reports unarmed")
	}
}

func TestNextDeadlinePicksEarliestNonzero(t *testing.T) {
	lt := LeaseTiming{T1: 0, T2: 500, Lifetime: 1000}
	d, ok := lt.nextDeadline()
	if !ok || d != 500 {
		t.Fatalf("nextDeadline() = (%d, %v), want (500, true)", d, ok)
	}
}

func TestNextDeadlineUnarmed(t *testing.T) {
	var lt LeaseTiming
	if _, ok := lt.nextDeadline(); ok {
		t.Fatal("nextDeadline() on zero LeaseTiming reports armed")
	}
}

func TestFireThresholdOrdering(t *testing.T) {
	// Lifetime wins even when T1/T2 have also elapsed.
	lt := LeaseTiming{T1: 10, T2: 20, Lifetime: 30}
	ev, fired := lt.fireThreshold(30)
	if !fired || ev != EventTimerLifetime {
		t.Fatalf("fireThreshold(30) = (%v, %v), want (TIMER_LIFETIME, true)", ev, fired)
	}
	if lt != (LeaseTiming{}) {
		t.Fatalf("fireThreshold did not zero all thresholds on lifetime: %+v", lt)
	}
}

func TestFireThresholdT2ZeroesT1(t *testing.T) {
	lt := LeaseTiming{T1: 10, T2: 20, Lifetime: 30}
	ev, fired := lt.fireThreshold(20)
	if !fired || ev != EventTimerT2 {
		t.Fatalf("fireThreshold(20) = (%v, %v), want (TIMER_T2, true)", ev, fired)
	}
	if lt.T1 != 0 || lt.T2 != 0 || lt.Lifetime != 30 {
		t.Fatalf("fireThreshold(T2) left unexpected state: %+v", lt)
	}
}

func TestFireThresholdT1LeavesT2AndLifetime(t *testing.T) {
	lt := LeaseTiming{T1: 10, T2: 20, Lifetime: 30}
	ev, fired := lt.fireThreshold(10)
	if !fired || ev != EventTimerT1 {
		t.Fatalf("fireThreshold(10) = (%v, %v), want (TIMER_T1, true)", ev, fired)
	}
	if lt.T1 != 0 || lt.T2 != 20 || lt.Lifetime != 30 {
		t.Fatalf("fireThreshold(T1) left unexpected state: %+v", lt)
	}
}

func TestFireThresholdNotYetDue(t *testing.T) {
	lt := LeaseTiming{T1: 10, T2: 20, Lifetime: 30}
	if _, fired := lt.fireThreshold(5); fired {
		t.Fatal("fireThreshold fired before any deadline elapsed")
	}
}
