package dhcp4wire

import (
	"bytes"
	"testing"
)

func TestFrameHeaderRoundTrip(t *testing.T) {
	buf := make([]byte, OptionsOffset+16)
	frm, err := NewFrame(buf)
	if err != nil {
		t.Fatal(err)
	}
	frm.SetOp(OpRequest)
	frm.SetXID(0xdeadbeef)
	frm.SetSecs(7)
	frm.SetFlags(FlagBroadcast)
	frm.SetMagicCookie(MagicCookie)
	*frm.CIAddr() = [4]byte{192, 168, 1, 5}
	copy(frm.CHAddrAs6()[:], []byte{1, 2, 3, 4, 5, 6})

	if frm.Op() != OpRequest {
		t.Errorf("Op: got %v", frm.Op())
	}
	if frm.XID() != 0xdeadbeef {
		t.Errorf("XID: got %x", frm.XID())
	}
	if frm.Secs() != 7 {
		t.Errorf("Secs: got %d", frm.Secs())
	}
	if frm.Flags() != FlagBroadcast {
		t.Errorf("Flags: got %v", frm.Flags())
	}
	if frm.MagicCookie() != MagicCookie {
		t.Errorf("MagicCookie: got %x", frm.MagicCookie())
	}
	if *frm.CIAddr() != [4]byte{192, 168, 1, 5} {
		t.Errorf("CIAddr: got %v", *frm.CIAddr())
	}
}

func TestFrameTooSmall(t *testing.T) {
	_, err := NewFrame(make([]byte, 10))
	if err == nil {
		t.Fatal("expected error for undersized buffer")
	}
}

func TestForEachOptionAndEncode(t *testing.T) {
	buf := make([]byte, OptionsOffset+32)
	frm, err := NewFrame(buf)
	if err != nil {
		t.Fatal(err)
	}
	opts := frm.OptionsPayload()
	n, err := EncodeOption8(opts, OptMessageType, byte(MsgOffer))
	if err != nil {
		t.Fatal(err)
	}
	n2, err := EncodeOption(opts[n:], OptServerIdentification, 10, 0, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	opts[n+n2] = byte(OptEnd)

	var gotType, gotServer []byte
	err = frm.ForEachOption(func(tag OptNum, data []byte) error {
		switch tag {
		case OptMessageType:
			gotType = data
		case OptServerIdentification:
			gotServer = data
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(gotType, []byte{byte(MsgOffer)}) {
		t.Errorf("message type: got %v", gotType)
	}
	if !bytes.Equal(gotServer, []byte{10, 0, 0, 1}) {
		t.Errorf("server id: got %v", gotServer)
	}
}

func TestForEachOptionRejectsOverrun(t *testing.T) {
	buf := make([]byte, OptionsOffset+4)
	frm, _ := NewFrame(buf)
	opts := frm.OptionsPayload()
	opts[0] = byte(OptMessageType)
	opts[1] = 200 // length claims far more than is available
	err := frm.ForEachOption(nil)
	if err == nil {
		t.Fatal("expected error for option length exceeding buffer")
	}
}
