//go:build linux

// Package dhcp4transport implements the Transport collaborator
// dhcp4client.Client consumes: an AF_PACKET raw socket bound to one
// interface, carrying DHCP messages wrapped in Ethernet/IPv4/UDP, the way a
// client without an assigned address yet must (broadcast, no kernel UDP
// socket can bind DHCP's source port before one exists). Grounded on the
// same AF_PACKET Bridge approach as the teacher's raw link-layer socket,
// generalized from Ethernet passthrough to building and parsing the
// IPv4/UDP envelope DHCP rides in.
package dhcp4transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"

	"golang.org/x/sys/unix"

	"github.com/dhcp4go/dhcp4c/dhcp4wire"
)

const (
	sizeEthernet = 14
	sizeIPv4Min  = 20
	sizeUDP      = 8

	protoUDP = 17
)

var (
	broadcastHW = [6]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
)

// Transport is a dhcp4client.Transport backed by an AF_PACKET raw socket
// bound to one network interface.
type Transport struct {
	fd     int
	hwAddr [6]byte
	rxBuf  [1500]byte
}

// New opens a raw socket on the named interface and binds it to receive
// every Ethernet frame on the link; Dispatch discards anything that is not
// an IPv4/UDP DHCP datagram client-ward.
func New(ifaceName string) (*Transport, error) {
	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil, fmt.Errorf("dhcp4transport: %w", err)
	}
	var hwAddr [6]byte
	copy(hwAddr[:], iface.HardwareAddr)

	proto := htons(unix.ETH_P_ALL)
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(proto))
	if err != nil {
		return nil, fmt.Errorf("dhcp4transport: socket: %w", err)
	}
	ll := unix.SockaddrLinklayer{
		Protocol: proto,
		Ifindex:  iface.Index,
	}
	if err := unix.Bind(fd, &ll); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("dhcp4transport: bind: %w", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("dhcp4transport: set nonblocking: %w", err)
	}
	return &Transport{fd: fd, hwAddr: hwAddr}, nil
}

// Fd returns the raw socket descriptor.
func (tr *Transport) Fd() int { return tr.fd }

// Close releases the raw socket. Idempotent.
func (tr *Transport) Close() error {
	if tr.fd < 0 {
		return nil
	}
	err := unix.Close(tr.fd)
	tr.fd = -1
	return err
}

// Dispatch reads one Ethernet frame, if any, and returns the DHCP message it
// carries. Frames that are not IPv4/UDP/DHCP are silently discarded; the
// caller sees (nil, nil), same as the EAGAIN case, since neither is an error
// worth resetting the state machine over.
func (tr *Transport) Dispatch() (*dhcp4wire.Message, error) {
	n, err := unix.Read(tr.fd, tr.rxBuf[:])
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
			return nil, nil
		}
		return nil, fmt.Errorf("dhcp4transport: read: %w", err)
	}
	payload, ok := extractUDPPayload(tr.rxBuf[:n])
	if !ok {
		return nil, nil
	}
	msg, err := dhcp4wire.Parse(payload)
	if err != nil {
		return nil, nil // malformed DHCP payload: ignore, not a transport error
	}
	return msg, nil
}

// extractUDPPayload unwraps an Ethernet/IPv4/UDP frame addressed to the DHCP
// client port (68) and returns its payload. ok is false for anything else:
// non-IPv4 ethertypes, non-UDP protocols, or a port mismatch (most traffic a
// raw ETH_P_ALL socket observes is neither).
func extractUDPPayload(frame []byte) (payload []byte, ok bool) {
	if len(frame) < sizeEthernet+sizeIPv4Min+sizeUDP {
		return nil, false
	}
	ethertype := binary.BigEndian.Uint16(frame[12:14])
	if ethertype != unix.ETH_P_IP {
		return nil, false
	}
	ip := frame[sizeEthernet:]
	ihl := int(ip[0]&0x0f) * 4
	if ihl < sizeIPv4Min || len(ip) < ihl+sizeUDP {
		return nil, false
	}
	if ip[9] != protoUDP {
		return nil, false
	}
	udp := ip[ihl:]
	dstPort := binary.BigEndian.Uint16(udp[2:4])
	if dstPort != dhcp4wire.DefaultClientPort {
		return nil, false
	}
	udpLen := int(binary.BigEndian.Uint16(udp[4:6]))
	if udpLen < sizeUDP || len(udp) < udpLen {
		return nil, false
	}
	return udp[sizeUDP:udpLen], true
}

// Send wraps frame (a complete DHCP message built by dhcp4wire.Build) in a
// broadcast Ethernet/IPv4/UDP envelope and writes it to the raw socket. The
// source address is always 0.0.0.0: a client calling Send has not yet been
// assigned one (see dhcp4client's lease-start entry points).
func (tr *Transport) Send(frame []byte) error {
	out := make([]byte, sizeEthernet+sizeIPv4Min+sizeUDP+len(frame))
	copy(out[0:6], broadcastHW[:])
	copy(out[6:12], tr.hwAddr[:])
	binary.BigEndian.PutUint16(out[12:14], unix.ETH_P_IP)

	ip := out[sizeEthernet:]
	buildIPv4Header(ip, len(frame))

	udp := ip[sizeIPv4Min:]
	binary.BigEndian.PutUint16(udp[0:2], dhcp4wire.DefaultClientPort)
	binary.BigEndian.PutUint16(udp[2:4], dhcp4wire.DefaultServerPort)
	binary.BigEndian.PutUint16(udp[4:6], uint16(sizeUDP+len(frame)))
	// UDP checksum is optional over IPv4; left zero, as DHCP servers accept.

	copy(udp[sizeUDP:], frame)

	_, err := unix.Write(tr.fd, out)
	if err != nil {
		return fmt.Errorf("dhcp4transport: write: %w", err)
	}
	return nil
}

// buildIPv4Header fills in a minimal (no-options) IPv4 header for a
// broadcast UDP datagram carrying payloadLen bytes of UDP payload, source
// 0.0.0.0 and destination 255.255.255.255, and computes its checksum.
func buildIPv4Header(ip []byte, payloadLen int) {
	totalLen := sizeIPv4Min + sizeUDP + payloadLen
	ip[0] = 0x45 // version 4, IHL 5 (no options)
	ip[1] = 0    // DSCP/ECN
	binary.BigEndian.PutUint16(ip[2:4], uint16(totalLen))
	binary.BigEndian.PutUint16(ip[4:6], 0) // identification
	binary.BigEndian.PutUint16(ip[6:8], 0) // flags/fragment offset
	ip[8] = 16                             // TTL
	ip[9] = protoUDP
	binary.BigEndian.PutUint16(ip[10:12], 0) // checksum, filled below
	binary.BigEndian.PutUint32(ip[12:16], 0) // source 0.0.0.0
	binary.BigEndian.PutUint32(ip[16:20], 0xffffffff) // dest 255.255.255.255
	binary.BigEndian.PutUint16(ip[10:12], ipv4Checksum(ip[:sizeIPv4Min]))
}

// ipv4Checksum computes the one's-complement checksum of an IPv4 header
// (RFC 791 §3.1): sum 16-bit words, fold carries, then complement.
func ipv4Checksum(header []byte) uint16 {
	var sum uint32
	for i := 0; i+1 < len(header); i += 2 {
		sum += uint32(binary.BigEndian.Uint16(header[i : i+2]))
	}
	for sum>>16 != 0 {
		sum = (sum & 0xffff) + (sum >> 16)
	}
	return ^uint16(sum)
}

func htons(i uint16) uint16 { return (i<<8)&0xff00 | i>>8 }
