package dhcp4wire

import "errors"

// BuildOptions carries the option-area fields an outgoing DISCOVER or
// REQUEST may carry. Zero values are omitted from the wire except
// ParameterRequestList, whose nil is replaced by DefaultParameterRequestList.
type BuildOptions struct {
	RequestedAddr        [4]byte // zero value omits OptRequestedIPaddress
	Hostname             string  // empty omits OptHostName
	ClientID             []byte  // nil/empty omits OptClientIdentifier
	ParameterRequestList []byte  // nil uses DefaultParameterRequestList
}

var errBufferTooSmall = errors.New("dhcp4wire: buffer too small for message")

// Build writes a complete DHCP message of the given type into buf: the fixed
// header (opcode REQUEST, Ethernet hardware type, the given xid and hardware
// address, the broadcast flag), the magic cookie, and the option area built
// from opts, terminated by OptEnd. It returns the number of bytes written.
//
// Build always sets the broadcast flag: this client has no IP address
// assigned yet in any state that calls Build (DISCOVER, REQUEST from
// SELECTING, or the INIT_REBOOT/REBOOTING REQUEST), so it cannot receive a
// unicast reply.
func Build(buf []byte, msgType MessageType, xid uint32, chaddr [6]byte, opts BuildOptions) (int, error) {
	frm, err := NewFrame(buf)
	if err != nil {
		return 0, err
	}
	frm.ClearHeader()
	frm.SetOp(OpRequest)
	frm.SetHardware(1, 6, 0) // htype=Ethernet(1), hlen=6, hops=0
	frm.SetXID(xid)
	frm.SetFlags(FlagBroadcast)
	copy(frm.CHAddrAs6()[:], chaddr[:])
	frm.SetMagicCookie(MagicCookie)

	payload := frm.OptionsPayload()
	ptr := 0

	n, err := EncodeOption8(payload[ptr:], OptMessageType, byte(msgType))
	if err != nil {
		return 0, err
	}
	ptr += n

	if opts.RequestedAddr != ([4]byte{}) {
		n, err = EncodeOption(payload[ptr:], OptRequestedIPaddress, opts.RequestedAddr[:]...)
		if err != nil {
			return 0, err
		}
		ptr += n
	}

	if len(opts.ClientID) > 0 {
		n, err = EncodeOption(payload[ptr:], OptClientIdentifier, opts.ClientID...)
		if err != nil {
			return 0, err
		}
		ptr += n
	}

	if opts.Hostname != "" {
		n, err = EncodeOptionString(payload[ptr:], OptHostName, opts.Hostname)
		if err != nil {
			return 0, err
		}
		ptr += n
	}

	prl := opts.ParameterRequestList
	if prl == nil {
		prl = DefaultParameterRequestList
	}
	n, err = EncodeOption(payload[ptr:], OptParameterRequestList, prl...)
	if err != nil {
		return 0, err
	}
	ptr += n

	if ptr+1 > len(payload) {
		return 0, errBufferTooSmall
	}
	payload[ptr] = byte(OptEnd)
	ptr++

	return OptionsOffset + ptr, nil
}
