package dhcp4client

import (
	"encoding/binary"
	"errors"

	"github.com/dhcp4go/dhcp4c/dhcp4wire"
)

var errMissingLeaseTime = errors.New("dhcp4client: ACK missing IP_ADDRESS_LEASE_TIME")

// parseLeaseTimes extracts T1/T2/lease-time from an accepted ACK and
// converts them from the wire format (seconds-from-now, RFC 2131 §4.4.5)
// into absolute microsecond deadlines in now's clock domain. Missing T1/T2
// fall back to the RFC 2131 §4.4.5 defaults of 0.5x and 0.875x the lease.
func parseLeaseTimes(msg *dhcp4wire.Message, now uint64) (t1, t2, lifetime uint64, err error) {
	leaseSecs, ok := queryU32(msg, dhcp4wire.OptIPAddressLeaseTime)
	if !ok {
		return 0, 0, 0, errMissingLeaseTime
	}
	lifetime = now + uint64(leaseSecs)*1_000_000

	if v, ok := queryU32(msg, dhcp4wire.OptRenewTimeValue); ok {
		t1 = now + uint64(v)*1_000_000
	} else {
		t1 = now + uint64(leaseSecs)*1_000_000/2
	}
	if v, ok := queryU32(msg, dhcp4wire.OptRebindingTimeValue); ok {
		t2 = now + uint64(v)*1_000_000
	} else {
		t2 = now + uint64(leaseSecs)*1_000_000*875/1000
	}
	// Guard against a malformed/inconsistent server reply: clamp rather
	// than let AcceptLease's ordering check reject an otherwise-usable ACK.
	if t2 > lifetime {
		t2 = lifetime
	}
	if t1 > t2 {
		t1 = t2
	}
	return t1, t2, lifetime, nil
}

func queryU32(msg *dhcp4wire.Message, tag dhcp4wire.OptNum) (uint32, bool) {
	v, ok := msg.Query(tag)
	if !ok || len(v) != 4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(v), true
}
