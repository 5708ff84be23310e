//go:build linux

package dhcp4client

import (
	"errors"

	"golang.org/x/sys/unix"
)

func newMultiplexer() (multiplexer, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epollMux{epfd: epfd}, nil
}

type epollMux struct {
	epfd int
}

func (m *epollMux) fd() int { return m.epfd }

// add registers targetFD for EPOLLIN readiness, tagging the event with tag
// via the event's Fd field. x/sys/unix's EpollEvent exposes no generic
// "data" union (unlike the C struct epoll_event), so the application tag
// is carried in Fd instead of the real descriptor, same as the original
// C source's ev.data.u32 usage; epoll_wait never needs the real fd back,
// only the tag, since each fd is registered with a distinct tag.
func (m *epollMux) add(targetFD int, tag uint32) error {
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(tag)}
	return unix.EpollCtl(m.epfd, unix.EPOLL_CTL_ADD, targetFD, &ev)
}

// wait polls with a zero timeout (never blocks) and handles at most one
// ready event, matching the core spec's dispatch() contract exactly.
func (m *epollMux) wait() (tag uint32, ready bool, err error) {
	var events [1]unix.EpollEvent
	n, err := unix.EpollWait(m.epfd, events[:], 0)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if n == 0 {
		return 0, false, nil
	}
	gotTag := uint32(events[0].Fd)
	if events[0].Events&(unix.EPOLLHUP|unix.EPOLLERR) != 0 {
		return gotTag, true, unix.EIO
	}
	return gotTag, true, nil
}

func (m *epollMux) close() error {
	return unix.Close(m.epfd)
}
