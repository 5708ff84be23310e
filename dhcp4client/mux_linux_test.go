//go:build linux

package dhcp4client

import (
	"os"
	"testing"
)

func TestMultiplexerTagsRoundTrip(t *testing.T) {
	mux, err := newMultiplexer()
	if err != nil {
		t.Fatalf("newMultiplexer: %v", err)
	}
	defer mux.close()

	r1, w1, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r1.Close()
	defer w1.Close()
	r2, w2, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r2.Close()
	defer w2.Close()

	if err := mux.add(int(r1.Fd()), epollTagTimer); err != nil {
		t.Fatalf("add(timer): %v", err)
	}
	if err := mux.add(int(r2.Fd()), epollTagConnection); err != nil {
		t.Fatalf("add(connection): %v", err)
	}

	if tag, ready, err := mux.wait(); err != nil || ready {
		t.Fatalf("wait() on idle fds = (%d, %v, %v), want (_, false, nil)", tag, ready, err)
	}

	w2.Write([]byte{1})
	tag, ready, err := mux.wait()
	if err != nil {
		t.Fatalf("wait(): %v", err)
	}
	if !ready || tag != epollTagConnection {
		t.Fatalf("wait() = (%d, %v), want (epollTagConnection, true)", tag, ready)
	}
	r2.Read(make([]byte, 1)) // drain so the next wait() sees the connection fd idle

	w1.Write([]byte{1})
	tag, ready, err = mux.wait()
	if err != nil {
		t.Fatalf("wait(): %v", err)
	}
	if !ready || tag != epollTagTimer {
		t.Fatalf("wait() = (%d, %v), want (epollTagTimer, true)", tag, ready)
	}
}

func TestMultiplexerCloseReleasesFd(t *testing.T) {
	mux, err := newMultiplexer()
	if err != nil {
		t.Fatalf("newMultiplexer: %v", err)
	}
	if err := mux.close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
