package dhcp4client

import (
	"errors"
	"fmt"

	"github.com/dhcp4go/dhcp4c/dhcp4wire"
)

// Transport is the collaborator interface the core consumes to send and
// receive DHCP packets. A single Dispatch call is non-blocking: it yields
// either no message (transient/EAGAIN), one parsed message, or an error.
// Hangup or error readiness on the transport's descriptor is detected by the
// Client's multiplexer and is fatal; a read failure inside Dispatch must
// likewise be returned as an error.
type Transport interface {
	// Fd returns the readiness descriptor to multiplex.
	Fd() int
	// Dispatch reads at most one datagram. It returns (nil, nil) when there
	// is nothing to read right now (the EAGAIN case).
	Dispatch() (*dhcp4wire.Message, error)
	// Send transmits one complete DHCP message, built by dhcp4wire.Build.
	Send(frame []byte) error
	// Close releases the transport's resources. Idempotent.
	Close() error
}

// Clock is the collaborator interface providing a monotonic boot-time clock
// and an edge-triggered, non-blocking expiration signal.
type Clock interface {
	// NowMicro returns the current monotonic time in microseconds.
	NowMicro() (uint64, error)
	// Fd returns the timer's readiness descriptor to multiplex.
	Fd() int
	// Arm sets the absolute deadline (microseconds, NowMicro's domain) at
	// which the timer should next become readable. A zero deadline
	// disarms the timer.
	Arm(deadlineMicro uint64) error
	// Drain reads and clears the expiration counter since the last read.
	// It never blocks; zero is a valid (no-op) result.
	Drain() (expirations uint64, err error)
	// Close releases the timer's resources. Idempotent.
	Close() error
}

// ErrClosed is returned by operations on a Client that has been closed.
var ErrClosed = errors.New("dhcp4client: client closed")

// ErrWrongState is returned by Discover, InitReboot and Reboot when called
// from a state other than the one each requires (see SPEC_FULL.md §4.7).
var ErrWrongState = errors.New("dhcp4client: operation invalid in current state")

// Config carries the identity a Client presents on the wire: its own
// hardware address, and the optional hostname/client-identifier/parameter
// request list options generalized from the teacher's per-state send
// branches (SPEC_FULL.md §4.7). It is supplied once, at construction.
type Config struct {
	ClientHardwareAddr   [6]byte
	Hostname             string
	ClientID             []byte
	ParameterRequestList []byte
}

// Client is the process-wide handle for one DHCP conversation on one
// interface. It exclusively owns its Clock and Transport and the lease
// timing derived from the last accepted ACK.
//
// A Client's zero value is not usable; construct one with New. All
// progress happens inside calls to Dispatch, which never blocks; the
// embedder drives it in response to GetFD becoming readable.
type Client struct {
	clock     Clock
	transport Transport
	mux       multiplexer
	cfg       Config

	state State
	lease LeaseTiming

	currentXID uint32
	// knownAddr is the address recorded by InitReboot for use by Reboot.
	knownAddr [4]byte
	closed    bool
}

// New creates a Client in StateInit with all lease timings zero, taking
// ownership of clk and conn: both are registered on an internal readiness
// multiplexer and both are closed by Client.Close. cfg supplies the
// hardware address and options the Client presents on the wire from
// Discover, InitReboot and Reboot.
func New(conn Transport, clk Clock, cfg Config) (*Client, error) {
	c := &Client{clock: clk, transport: conn, cfg: cfg}
	mux, err := newMultiplexer()
	if err != nil {
		return nil, fmt.Errorf("dhcp4client: creating multiplexer: %w", err)
	}
	c.mux = mux
	if err := c.mux.add(clk.Fd(), epollTagTimer); err != nil {
		c.mux.close()
		return nil, fmt.Errorf("dhcp4client: registering clock: %w", err)
	}
	if err := c.mux.add(conn.Fd(), epollTagConnection); err != nil {
		c.mux.close()
		return nil, fmt.Errorf("dhcp4client: registering transport: %w", err)
	}
	return c, nil
}

// Close releases all resources owned by the Client: the multiplexer, the
// Clock and the Transport. It is idempotent and safe to call on a Client
// that failed partway through New's registration (the caller of New never
// sees such a Client, but Close must still tolerate it defensively).
func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	var errs []error
	if c.mux != nil {
		if err := c.mux.close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.clock != nil {
		if err := c.clock.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.transport != nil {
		if err := c.transport.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GetFD returns the readiness descriptor the embedder should add to its own
// multiplexer. It becomes readable whenever a call to Dispatch would have
// work to do.
func (c *Client) GetFD() int {
	return c.mux.fd()
}

// State returns the client's current state.
func (c *Client) State() State { return c.state }

// Lease returns the client's current lease timing. It is only meaningful in
// StateBound, StateRenewing or StateRebinding.
func (c *Client) Lease() LeaseTiming { return c.lease }

// Dispatch processes at most one readiness event and returns promptly; it
// never blocks. On any error, the Client is reset to StateInit (with its
// lease timing cleared) before the error is returned, matching the core
// "hard error resets to INIT" policy; the reset is implemented once here
// rather than duplicated in each handler.
func (c *Client) Dispatch() error {
	if c.closed {
		c.resetToInit()
		return ErrClosed
	}
	tag, ready, err := c.mux.wait()
	if err != nil {
		c.resetToInit()
		return err
	}
	if !ready {
		return nil
	}
	switch tag {
	case epollTagTimer:
		err = c.dispatchTimer()
	case epollTagConnection:
		err = c.dispatchConnection()
	}
	if err != nil {
		c.resetToInit()
		return err
	}
	return nil
}

func (c *Client) resetToInit() {
	c.state = StateInit
	c.lease = LeaseTiming{}
}

// dispatchTimer implements the core spec's §4.4 lifetime accounting: drain
// the expiration counter, and if nonzero, select and apply the single most
// advanced applicable threshold transition.
func (c *Client) dispatchTimer() error {
	expirations, err := c.clock.Drain()
	if err != nil {
		return err
	}
	if expirations == 0 {
		return nil
	}
	now, err := c.clock.NowMicro()
	if err != nil {
		return err
	}
	ev, fired := c.lease.fireThreshold(now)
	if !fired {
		return nil
	}
	c.state = transition(c.state, ev)
	return c.rearmTimer()
}

// dispatchConnection implements the core spec's §4.3/§4.1 message dispatch:
// read one message (if any), classify it by MESSAGE_TYPE, and apply the
// corresponding transition. Malformed or unknown message types are ignored,
// not errors, per §7.
func (c *Client) dispatchConnection() error {
	msg, err := c.transport.Dispatch()
	if err != nil {
		return err
	}
	if msg == nil {
		return nil // spurious readiness or EAGAIN
	}
	mt, ok := msg.MessageType()
	if !ok {
		return nil // malformed/missing MESSAGE_TYPE: ignore per §7
	}
	var ev Event
	switch mt {
	case dhcp4wire.MsgOffer:
		ev = EventMsgOffer
	case dhcp4wire.MsgAck:
		return c.dispatchAck(msg)
	case dhcp4wire.MsgNak:
		ev = EventMsgNak
	default:
		return nil // unknown message type: ignore per §7
	}
	c.state = transition(c.state, ev)
	if c.state == StateInit {
		c.resetToInit() // a NAK back to INIT also clears the lease timing
	}
	return nil
}

// leaseAcceptingState reports whether s is one of the states from which an
// ACK is the RFC 2131 response the client is actually waiting for (see
// SPEC_FULL.md §4.6).
func leaseAcceptingState(s State) bool {
	switch s {
	case StateRequesting, StateRebooting, StateRenewing, StateRebinding:
		return true
	default:
		return false
	}
}

// dispatchAck resolves the core spec's open question on ACK handling
// (SPEC_FULL.md §4.6): the transition table leaves every state unchanged on
// MSG_ACK, so lease acceptance is driven explicitly here, before the table
// is consulted, and only from the states where a server reply is expected.
func (c *Client) dispatchAck(msg *dhcp4wire.Message) error {
	if !leaseAcceptingState(c.state) {
		return nil // stray ACK in a state that never requested one: ignore
	}
	now, err := c.clock.NowMicro()
	if err != nil {
		return err
	}
	t1, t2, lifetime, err := parseLeaseTimes(msg, now)
	if err != nil {
		return nil // malformed lease options: ignore per §7, stay as-is
	}
	if err := c.AcceptLease(t1, t2, lifetime); err != nil {
		return nil
	}
	c.state = transition(c.state, EventMsgAck) // no-op by table, kept for symmetry
	return nil
}

// AcceptLease arms the lease timing from three absolute microsecond
// deadlines and enters StateBound, rearming the timer. It is exposed so a
// collaborator other than the built-in ACK handling (for example a
// different lease-acceptance policy) can drive the same transition.
func (c *Client) AcceptLease(t1, t2, lifetime uint64) error {
	if !(t1 <= t2 && t2 <= lifetime) {
		return fmt.Errorf("dhcp4client: invalid lease timing t1=%d t2=%d lifetime=%d", t1, t2, lifetime)
	}
	c.lease = LeaseTiming{T1: t1, T2: t2, Lifetime: lifetime}
	c.state = StateBound
	return c.rearmTimer()
}

func (c *Client) rearmTimer() error {
	deadline, armed := c.lease.nextDeadline()
	if !armed {
		deadline = 0
	}
	return c.clock.Arm(deadline)
}

// Discover begins a new lease acquisition: it sends a DHCPDISCOVER over the
// transport and enters StateSelecting. Valid only from StateInit.
func (c *Client) Discover(xid uint32) error {
	if c.closed {
		return ErrClosed
	}
	if c.state != StateInit {
		return ErrWrongState
	}
	if err := c.send(dhcp4wire.MsgDiscover, xid, dhcp4wire.BuildOptions{}); err != nil {
		return err
	}
	c.currentXID = xid
	c.state = StateSelecting
	return nil
}

// InitReboot records a previously-leased address and enters StateInitReboot
// without sending anything yet, per RFC 2131 §4.4: the REQUEST is sent by a
// subsequent call to Reboot. Valid only from StateInit.
func (c *Client) InitReboot(xid uint32, knownAddr [4]byte) error {
	if c.closed {
		return ErrClosed
	}
	if c.state != StateInit {
		return ErrWrongState
	}
	c.currentXID = xid
	c.knownAddr = knownAddr
	c.state = StateInitReboot
	return nil
}

// Reboot sends a DHCPREQUEST for the address recorded by InitReboot, with no
// server identifier (RFC 2131 §4.3.2), and enters StateRebooting. Valid only
// from StateInitReboot.
func (c *Client) Reboot(xid uint32) error {
	if c.closed {
		return ErrClosed
	}
	if c.state != StateInitReboot {
		return ErrWrongState
	}
	opts := dhcp4wire.BuildOptions{RequestedAddr: c.knownAddr}
	if err := c.send(dhcp4wire.MsgRequest, xid, opts); err != nil {
		return err
	}
	c.currentXID = xid
	c.state = StateRebooting
	return nil
}

// send builds a DHCP message of the given type using the Client's Config and
// transmits it through the Transport. The buffer is sized generously for the
// small, fixed option set the core builds (MESSAGE_TYPE, REQUESTED_IP,
// CLIENT_IDENTIFIER, HOST_NAME, PARAMETER_REQUEST_LIST, END).
func (c *Client) send(msgType dhcp4wire.MessageType, xid uint32, opts dhcp4wire.BuildOptions) error {
	opts.Hostname = c.cfg.Hostname
	opts.ClientID = c.cfg.ClientID
	opts.ParameterRequestList = c.cfg.ParameterRequestList

	var buf [dhcp4wire.OptionsOffset + 64]byte
	n, err := dhcp4wire.Build(buf[:], msgType, xid, c.cfg.ClientHardwareAddr, opts)
	if err != nil {
		return fmt.Errorf("dhcp4client: building %v: %w", msgType, err)
	}
	return c.transport.Send(buf[:n])
}
