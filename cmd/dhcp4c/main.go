// Command dhcp4c drives dhcp4client.Client against a real network interface:
// it opens an AF_PACKET transport and a timerfd clock, issues a DHCPDISCOVER,
// and logs every state transition, including those after a lease is bound,
// until the process is interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/dhcp4go/dhcp4c/dhcp4client"
	"github.com/dhcp4go/dhcp4c/dhcp4time"
	"github.com/dhcp4go/dhcp4c/dhcp4transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		flagInterface = "eth0"
		flagHostname  = ""
	)
	flag.StringVar(&flagInterface, "i", flagInterface, "interface to request a lease on")
	flag.StringVar(&flagHostname, "hostname", flagHostname, "HOST_NAME option to present to the server")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	iface, err := net.InterfaceByName(flagInterface)
	if err != nil {
		return fmt.Errorf("dhcp4c: %w", err)
	}
	var hwAddr [6]byte
	copy(hwAddr[:], iface.HardwareAddr)

	tr, err := dhcp4transport.New(flagInterface)
	if err != nil {
		return fmt.Errorf("dhcp4c: opening transport: %w", err)
	}
	clk, err := dhcp4time.New()
	if err != nil {
		tr.Close()
		return fmt.Errorf("dhcp4c: opening clock: %w", err)
	}

	cfg := dhcp4client.Config{
		ClientHardwareAddr: hwAddr,
		Hostname:           flagHostname,
	}
	client, err := dhcp4client.New(tr, clk, cfg)
	if err != nil {
		return fmt.Errorf("dhcp4c: %w", err)
	}
	defer client.Close()

	xid := rand.Uint32()
	if err := client.Discover(xid); err != nil {
		return fmt.Errorf("dhcp4c: %w", err)
	}
	log.Info("sent DHCPDISCOVER", "xid", xid, "interface", flagInterface)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lastState := client.State()
	for ctx.Err() == nil {
		if err := waitReadable(client.GetFD(), time.Second); err != nil {
			if errors.Is(err, errTimeout) {
				continue
			}
			return fmt.Errorf("dhcp4c: %w", err)
		}
		if err := client.Dispatch(); err != nil {
			log.Warn("dispatch error, state reset to INIT", "error", err)
			continue
		}
		if s := client.State(); s != lastState {
			log.Info("state transition", "from", lastState, "to", s)
			lastState = s
			if s == dhcp4client.StateBound {
				lease := client.Lease()
				log.Info("lease bound", "t1_micros", lease.T1, "t2_micros", lease.T2, "lifetime_micros", lease.Lifetime)
			}
		}
	}
	return nil
}

var errTimeout = errors.New("dhcp4c: poll timed out")

// waitReadable blocks until fd is readable or timeout elapses, the minimal
// embedder-side multiplexing dhcp4client.Client.GetFD is designed for.
func waitReadable(fd int, timeout time.Duration) error {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(timeout.Milliseconds()))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return nil
		}
		return err
	}
	if n == 0 {
		return errTimeout
	}
	return nil
}
