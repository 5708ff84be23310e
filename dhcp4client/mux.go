package dhcp4client

// Tags carried as epoll_event.data.u32 (via EpollEvent.Fd, see mux_linux.go),
// distinguishing the two readiness sources a Client multiplexes. Mirrors the
// original C source's N_DHCP4_CLIENT_EPOLL_TIMER / _EPOLL_CONNECTION.
const (
	epollTagTimer      uint32 = 1
	epollTagConnection uint32 = 2
)

// multiplexer is the internal readiness multiplexer a Client uses to
// aggregate its Clock's and Transport's descriptors behind the single fd
// GetFD returns.
type multiplexer interface {
	fd() int
	add(targetFD int, tag uint32) error
	wait() (tag uint32, ready bool, err error)
	close() error
}
