//go:build linux

// Package dhcp4time implements the Clock collaborator dhcp4client.Client
// consumes for its monotonic time source and T1/T2/lifetime timer: a Linux
// timerfd driven off CLOCK_BOOTTIME, which (unlike CLOCK_MONOTONIC) keeps
// advancing across system suspend, matching what a long-lived lease needs.
package dhcp4time

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Clock is a dhcp4client.Clock backed by timerfd_create(2) /
// clock_gettime(2) against CLOCK_BOOTTIME.
type Clock struct {
	fd int
}

// New creates a Clock, initially disarmed.
func New() (*Clock, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_BOOTTIME, unix.TFD_CLOEXEC|unix.TFD_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("dhcp4time: timerfd_create: %w", err)
	}
	return &Clock{fd: fd}, nil
}

// NowMicro returns the current CLOCK_BOOTTIME value in microseconds.
func (c *Clock) NowMicro() (uint64, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_BOOTTIME, &ts); err != nil {
		return 0, fmt.Errorf("dhcp4time: clock_gettime: %w", err)
	}
	return uint64(ts.Sec)*1_000_000 + uint64(ts.Nsec)/1_000, nil
}

// Fd returns the timerfd descriptor.
func (c *Clock) Fd() int { return c.fd }

// Arm sets the timer to expire once CLOCK_BOOTTIME reaches deadlineMicro. A
// zero deadline disarms it, per the Clock contract.
func (c *Clock) Arm(deadlineMicro uint64) error {
	spec := unix.ItimerSpec{
		Value: unix.Timespec{
			Sec:  int64(deadlineMicro / 1_000_000),
			Nsec: int64(deadlineMicro%1_000_000) * 1_000,
		},
	}
	flags := 0
	if deadlineMicro != 0 {
		flags = unix.TFD_TIMER_ABSTIME
	}
	if err := unix.TimerfdSettime(c.fd, flags, &spec, nil); err != nil {
		return fmt.Errorf("dhcp4time: timerfd_settime: %w", err)
	}
	return nil
}

// Drain reads and clears the expiration counter. It never blocks: the fd is
// opened O_NONBLOCK, so an empty read surfaces as EAGAIN, translated to a
// zero result.
func (c *Clock) Drain() (uint64, error) {
	var buf [8]byte
	n, err := unix.Read(c.fd, buf[:])
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return 0, nil
		}
		return 0, fmt.Errorf("dhcp4time: reading timerfd: %w", err)
	}
	if n != 8 {
		return 0, nil
	}
	return uint64(buf[0]) | uint64(buf[1])<<8 | uint64(buf[2])<<16 | uint64(buf[3])<<24 |
		uint64(buf[4])<<32 | uint64(buf[5])<<40 | uint64(buf[6])<<48 | uint64(buf[7])<<56, nil
}

// Close releases the timerfd. Idempotent.
func (c *Clock) Close() error {
	if c.fd < 0 {
		return nil
	}
	err := unix.Close(c.fd)
	c.fd = -1
	return err
}
