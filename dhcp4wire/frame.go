// Package dhcp4wire implements the BOOTP/DHCPv4 wire format: the fixed
// header, the option area, and option tag iteration. It is the collaborator
// the core state machine in dhcp4client consumes through a narrow
// query-by-tag interface (see Message.Query) and never inspects directly.
package dhcp4wire

import (
	"encoding/binary"
	"errors"
)

const (
	sizeHeader   = 44
	sizeSName    = 64  // Server name, legacy BOOTP field.
	sizeBootFile = 128 // Boot file name, legacy BOOTP field.

	// magicCookieOffset is measured from the start of the UDP payload.
	magicCookieOffset = sizeHeader + sizeSName + sizeBootFile
	// MagicCookie is the fixed 4-byte value preceding the option area.
	MagicCookie uint32 = 0x63825363
	// OptionsOffset is measured from the start of the UDP payload.
	OptionsOffset = magicCookieOffset + 4

	DefaultClientPort = 68
	DefaultServerPort = 67
)

// Op is the BOOTP opcode: request or reply.
type Op uint8

const (
	OpRequest Op = 1
	OpReply   Op = 2
)

// Flags is the DHCP flags field; only the broadcast bit is defined.
type Flags uint16

const FlagBroadcast Flags = 1 << 15

var (
	errSmallFrame    = errors.New("dhcp4wire: frame size <240")
	errDHCPBadOption = errors.New("dhcp4wire: opt length exceeds payload")
)

// NewFrame returns a Frame backed by buf. buf must be at least OptionsOffset
// bytes; the caller is responsible for ensuring enough trailing space for
// whatever options it intends to write or read.
func NewFrame(buf []byte) (Frame, error) {
	if len(buf) < OptionsOffset {
		return Frame{}, errSmallFrame
	}
	return Frame{buf: buf}, nil
}

// Frame is a thin, non-owning view over a byte buffer holding a BOOTP/DHCP
// packet. Accessors index directly into the buffer; callers must not retain
// a Frame past the lifetime of its backing array.
type Frame struct {
	buf []byte
}

// RawData returns the buffer the Frame was constructed from.
func (frm Frame) RawData() []byte { return frm.buf }

// OptionsPayload returns the options area of the frame, which may be zero
// length if buf was sized exactly to OptionsOffset.
func (frm Frame) OptionsPayload() []byte { return frm.buf[OptionsOffset:] }

func (frm Frame) Op() Op      { return Op(frm.buf[0]) }
func (frm Frame) SetOp(op Op) { frm.buf[0] = byte(op) }

func (frm Frame) Hardware() (htype, hlen, hops uint8) {
	return frm.buf[1], frm.buf[2], frm.buf[3]
}

func (frm Frame) SetHardware(htype, hlen, hops uint8) {
	frm.buf[1], frm.buf[2], frm.buf[3] = htype, hlen, hops
}

// XID is the transaction ID: constant across one DHCP request/response
// exchange and used to discard packets belonging to another conversation.
func (frm Frame) XID() uint32       { return binary.BigEndian.Uint32(frm.buf[4:8]) }
func (frm Frame) SetXID(xid uint32) { binary.BigEndian.PutUint32(frm.buf[4:8], xid) }

func (frm Frame) Secs() uint16        { return binary.BigEndian.Uint16(frm.buf[8:10]) }
func (frm Frame) SetSecs(secs uint16) { binary.BigEndian.PutUint16(frm.buf[8:10], secs) }

func (frm Frame) Flags() Flags         { return Flags(binary.BigEndian.Uint16(frm.buf[10:12])) }
func (frm Frame) SetFlags(flags Flags) { binary.BigEndian.PutUint16(frm.buf[10:12], uint16(flags)) }

// CIAddr is the client IP address, filled in by the client once it has one.
func (frm Frame) CIAddr() *[4]byte { return (*[4]byte)(frm.buf[12:16]) }

// YIAddr is "your" (client) IP address, filled in by the server.
func (frm Frame) YIAddr() *[4]byte { return (*[4]byte)(frm.buf[16:20]) }

// SIAddr is the next-server-to-use address (OFFER/ACK only).
func (frm Frame) SIAddr() *[4]byte { return (*[4]byte)(frm.buf[20:24]) }

// GIAddr is the relay agent address.
func (frm Frame) GIAddr() *[4]byte { return (*[4]byte)(frm.buf[24:28]) }

// CHAddrAs6 returns the first 6 bytes of CHAddr, the common Ethernet case.
func (frm Frame) CHAddrAs6() *[6]byte { return (*[6]byte)(frm.buf[28:34]) }

// CHAddr is the full 16-byte client hardware address field.
func (frm Frame) CHAddr() *[16]byte { return (*[16]byte)(frm.buf[28:44]) }

func (frm Frame) MagicCookie() uint32 {
	return binary.BigEndian.Uint32(frm.buf[magicCookieOffset:])
}

func (frm Frame) SetMagicCookie(cookie uint32) {
	binary.BigEndian.PutUint32(frm.buf[magicCookieOffset:], cookie)
}

// ClearHeader zeros the fixed-size header and legacy BOOTP fields, leaving
// the option area untouched.
func (frm Frame) ClearHeader() {
	for i := range frm.buf[:OptionsOffset] {
		frm.buf[i] = 0
	}
}

// ForEachOption walks the option area, invoking fn for each tag/value pair.
// Iteration stops at the End option (255) or at the first malformed option
// (a length byte that would run past the buffer). fn may be nil, in which
// case ForEachOption performs validation only. Returning a non-nil error
// from fn stops iteration early and that error is returned.
func (frm Frame) ForEachOption(fn func(tag OptNum, data []byte) error) error {
	ptr := OptionsOffset
	buf := frm.buf
	if ptr > len(buf) {
		return errSmallFrame
	}
	for ptr+1 < len(buf) {
		tag := OptNum(buf[ptr])
		if tag == OptEnd {
			return nil
		}
		if tag == OptPad {
			ptr++
			continue
		}
		optlen := int(buf[ptr+1])
		if ptr+2+optlen > len(buf) {
			return errDHCPBadOption
		}
		if fn != nil {
			if err := fn(tag, buf[ptr+2:ptr+2+optlen]); err != nil {
				return err
			}
		}
		ptr += 2 + optlen
	}
	return nil
}
