package maestro

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakePort struct {
	wrote bytes.Buffer
	resp  bytes.Buffer
}

func (f *fakePort) Write(p []byte) (int, error) { return f.wrote.Write(p) }
func (f *fakePort) Read(p []byte) (int, error)  { return f.resp.Read(p) }

func TestSetPulseFrame(t *testing.T) {
	port := &fakePort{}
	b := New(port)
	if err := b.SetPulseMicros(0, 1500); err != nil {
		t.Fatal(err)
	}
	// 1500 us is 6000 quarter-us.
	want := []byte{0x84, 0x00, 0x70, 0x2e}
	if diff := cmp.Diff(port.wrote.Bytes(), want); diff != "" {
		t.Errorf("unexpected frame: got(-)/want(+):\n%s", diff)
	}
}

func TestConfigureFrames(t *testing.T) {
	port := &fakePort{}
	b := New(port)
	if err := b.Configure(3, -140, 140); err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0x87, 0x03, 0x00, 0x00, // speed unlimited
		0x89, 0x03, 0x00, 0x00, // acceleration unlimited
	}
	if diff := cmp.Diff(port.wrote.Bytes(), want); diff != "" {
		t.Errorf("unexpected frames: got(-)/want(+):\n%s", diff)
	}
}

func TestClampToConfiguredRange(t *testing.T) {
	port := &fakePort{}
	b := New(port)
	if err := b.Configure(2, -140, 140); err != nil {
		t.Fatal(err)
	}
	port.wrote.Reset()
	if err := b.SetPulseMicros(2, 3000); err != nil {
		t.Fatal(err)
	}
	// Clamped to 2000 us, which is 8000 quarter-us.
	want := []byte{0x84, 0x02, 0x40, 0x3e}
	if diff := cmp.Diff(port.wrote.Bytes(), want); diff != "" {
		t.Errorf("unexpected frame: got(-)/want(+):\n%s", diff)
	}
}

func TestDisable(t *testing.T) {
	port := &fakePort{}
	b := New(port)
	if err := b.Disable(1); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x84, 0x01, 0x00, 0x00}
	if diff := cmp.Diff(port.wrote.Bytes(), want); diff != "" {
		t.Errorf("unexpected frame: got(-)/want(+):\n%s", diff)
	}
}

func TestEnableResendsLastTarget(t *testing.T) {
	port := &fakePort{}
	b := New(port)
	if err := b.SetPulseMicros(3, 1750); err != nil {
		t.Fatal(err)
	}
	port.wrote.Reset()
	if err := b.Enable(3); err != nil {
		t.Fatal(err)
	}
	// 1750 us is 7000 quarter-us.
	want := []byte{0x84, 0x03, 0x58, 0x36}
	if diff := cmp.Diff(port.wrote.Bytes(), want); diff != "" {
		t.Errorf("unexpected frame: got(-)/want(+):\n%s", diff)
	}
}

func TestEnableNeverDriven(t *testing.T) {
	port := &fakePort{}
	b := New(port)
	if err := b.Enable(4); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x84, 0x04, 0x70, 0x2e}
	if diff := cmp.Diff(port.wrote.Bytes(), want); diff != "" {
		t.Errorf("unexpected frame: got(-)/want(+):\n%s", diff)
	}
}

func TestErrors(t *testing.T) {
	port := &fakePort{}
	port.resp.Write([]byte{0x21, 0x00})
	b := New(port)
	mask, err := b.Errors()
	if err != nil {
		t.Fatal(err)
	}
	if mask != 0x21 {
		t.Errorf("mask = %#x, want 0x21", mask)
	}
	if got := port.wrote.Bytes(); len(got) != 1 || got[0] != 0xa1 {
		t.Errorf("request = %#v, want [0xa1]", got)
	}
}

func TestDecodeErrors(t *testing.T) {
	if err := DecodeErrors(0); err != nil {
		t.Errorf("DecodeErrors(0) = %v, want nil", err)
	}
	err := DecodeErrors(1<<0 | 1<<3)
	if err == nil {
		t.Fatal("DecodeErrors(0x09) = nil")
	}
	if got, want := err.Error(), "serial signal error,serial crc error"; got != want {
		t.Errorf("DecodeErrors(0x09) = %q, want %q", got, want)
	}
}
