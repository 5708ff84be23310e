//go:build !linux

package dhcp4time

import "errors"

var errUnsupportedPlatform = errors.New("dhcp4time: requires linux (timerfd/CLOCK_BOOTTIME)")

// Clock is the non-Linux stub: New always fails, since there is no portable
// timerfd equivalent this package targets.
type Clock struct{}

func New() (*Clock, error) { return nil, errUnsupportedPlatform }

func (c *Clock) NowMicro() (uint64, error)     { return 0, errUnsupportedPlatform }
func (c *Clock) Fd() int                       { return -1 }
func (c *Clock) Arm(deadlineMicro uint64) error { return errUnsupportedPlatform }
func (c *Clock) Drain() (uint64, error)        { return 0, errUnsupportedPlatform }
func (c *Clock) Close() error                  { return nil }
