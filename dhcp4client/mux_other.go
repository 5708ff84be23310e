//go:build !linux

package dhcp4client

import "errors"

// errUnsupportedPlatform is returned by newMultiplexer on platforms without
// an epoll implementation. The core state machine itself is portable; only
// the readiness multiplexer is Linux-specific, mirroring the teacher's
// tap.go/tap_nolinux.go split.
var errUnsupportedPlatform = errors.New("dhcp4client: readiness multiplexer requires linux")

func newMultiplexer() (multiplexer, error) {
	return nil, errUnsupportedPlatform
}
