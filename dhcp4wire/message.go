package dhcp4wire

import "io"

// Message is the parsed form of one received DHCP packet. It is opaque to
// the state machine in dhcp4client except through Query: the only option
// the core inspects by tag is OptMessageType, to classify the event.
//
// A Message does not copy its backing buffer; it must not be retained past
// the dispatch call that produced it (see dhcp4client's handling of
// Transport.Dispatch).
type Message struct {
	frm Frame
}

// Parse validates buf as a well-formed DHCP frame and returns a Message
// backed by it. Parse does not copy buf; the Message aliases it.
func Parse(buf []byte) (*Message, error) {
	frm, err := NewFrame(buf)
	if err != nil {
		return nil, err
	}
	if err := frm.ForEachOption(nil); err != nil {
		return nil, err
	}
	return &Message{frm: frm}, nil
}

// Frame returns the underlying wire frame, for collaborators (such as the
// transport or a richer option decoder) that need more than tag lookup.
// The core state machine never calls this.
func (m *Message) Frame() Frame { return m.frm }

// Query looks up the first occurrence of tag in the option area. ok is
// false if the tag is absent (the ENODATA case in the collaborator
// contract described by the core spec).
func (m *Message) Query(tag OptNum) (value []byte, ok bool) {
	m.frm.ForEachOption(func(t OptNum, data []byte) error {
		if t == tag {
			value = data
			ok = true
			return io.EOF // stop iteration, first match wins
		}
		return nil
	})
	return value, ok
}

// MessageType returns the message type carried in OptMessageType, and false
// if the option is absent or not exactly one byte long, mirroring the core
// spec's "validating size == 1" contract.
func (m *Message) MessageType() (MessageType, bool) {
	v, ok := m.Query(OptMessageType)
	if !ok || len(v) != 1 {
		return 0, false
	}
	return MessageType(v[0]), true
}
