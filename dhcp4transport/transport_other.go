//go:build !linux

package dhcp4transport

import (
	"errors"

	"github.com/dhcp4go/dhcp4c/dhcp4wire"
)

var errUnsupportedPlatform = errors.New("dhcp4transport: requires linux (AF_PACKET)")

// Transport is the non-linux stub: New always fails, since there is no
// portable raw-socket equivalent this package targets.
type Transport struct{}

func New(ifaceName string) (*Transport, error) { return nil, errUnsupportedPlatform }

func (tr *Transport) Fd() int                               { return -1 }
func (tr *Transport) Dispatch() (*dhcp4wire.Message, error) { return nil, errUnsupportedPlatform }
func (tr *Transport) Send(frame []byte) error                { return errUnsupportedPlatform }
func (tr *Transport) Close() error                            { return nil }
