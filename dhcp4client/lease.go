package dhcp4client

// LeaseTiming holds the three monotonic deadlines (microseconds, same clock
// domain as Clock.NowMicro) derived from the last accepted ACK. The value 0
// means "not armed". At rest, outside a transition, T1 <= T2 <= Lifetime.
//
// LeaseTiming is only meaningful while the Client is in StateBound,
// StateRenewing or StateRebinding; every return to StateInit clears it, so
// in the other states all three fields are zero.
type LeaseTiming struct {
	T1       uint64
	T2       uint64
	Lifetime uint64
}

// armed reports whether any threshold is set.
func (lt LeaseTiming) armed() bool {
	return lt.T1 != 0 || lt.T2 != 0 || lt.Lifetime != 0
}

// nextDeadline returns the earliest nonzero threshold, and false if none is
// armed. This is the absolute deadline the Clock's Timer should be set to.
func (lt LeaseTiming) nextDeadline() (uint64, bool) {
	var best uint64
	found := false
	for _, d := range [...]uint64{lt.T1, lt.T2, lt.Lifetime} {
		if d == 0 {
			continue
		}
		if !found || d < best {
			best = d
			found = true
		}
	}
	return best, found
}

// fireThreshold selects the single most-advanced applicable timer event for
// the given now, per the core spec's §4.4 ordering rule: lifetime wins over
// T2, T2 wins over T1. It zeroes the thresholds that fired (and everything
// below them) in place and returns the Event to apply, or false if nothing
// is yet due.
//
// Preferring the most-advanced threshold means a clock jump that crosses
// several deadlines in one expiration still yields exactly one transition;
// the zeroed deadlines guarantee the next call naturally picks up the next
// one still pending.
func (lt *LeaseTiming) fireThreshold(now uint64) (Event, bool) {
	switch {
	case lt.Lifetime != 0 && now >= lt.Lifetime:
		*lt = LeaseTiming{}
		return EventTimerLifetime, true
	case lt.T2 != 0 && now >= lt.T2:
		lt.T1 = 0
		lt.T2 = 0
		return EventTimerT2, true
	case lt.T1 != 0 && now >= lt.T1:
		lt.T1 = 0
		return EventTimerT1, true
	default:
		return 0, false
	}
}
