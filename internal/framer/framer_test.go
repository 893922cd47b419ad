package framer

import (
	"bytes"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	payload := []byte("hello")
	wire, err := Frame(payload)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}

	f := New()
	f.Feed(wire)
	got, ok := f.Next()
	if !ok {
		t.Fatal("expected a complete frame")
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}

func TestNextWaitsForMoreBytes(t *testing.T) {
	wire, _ := Frame([]byte("hello"))
	f := New()
	f.Feed(wire[:3]) // length prefix + 1 byte of payload

	if _, ok := f.Next(); ok {
		t.Fatal("expected Next to report incomplete frame")
	}
	f.Feed(wire[3:])
	got, ok := f.Next()
	if !ok || string(got) != "hello" {
		t.Fatalf("got %q, ok=%v", got, ok)
	}
}

func TestZeroLengthFrameDiscardedSilently(t *testing.T) {
	f := New()
	f.Feed([]byte{0x00, 0x00}) // zero-length frame
	second, _ := Frame([]byte("ok"))
	f.Feed(second)

	got, ok := f.Next()
	if !ok || string(got) != "ok" {
		t.Fatalf("got %q, ok=%v, want 'ok'", got, ok)
	}
}

func TestMultipleFramesInOneFeed(t *testing.T) {
	a, _ := Frame([]byte("one"))
	b, _ := Frame([]byte("two"))
	f := New()
	f.Feed(append(a, b...))

	first, ok := f.Next()
	if !ok || string(first) != "one" {
		t.Fatalf("first = %q, ok=%v", first, ok)
	}
	second, ok := f.Next()
	if !ok || string(second) != "two" {
		t.Fatalf("second = %q, ok=%v", second, ok)
	}
	if _, ok := f.Next(); ok {
		t.Fatal("expected no more frames")
	}
}

func TestResetDropsPartialBuffer(t *testing.T) {
	f := New()
	f.Feed([]byte{0x00, 0x05, 'a', 'b'})
	if f.Pending() == 0 {
		t.Fatal("expected pending bytes before reset")
	}
	f.Reset()
	if f.Pending() != 0 {
		t.Fatalf("Pending() = %d after Reset, want 0", f.Pending())
	}
}

func TestFrameRejectsOversizedPayload(t *testing.T) {
	if _, err := Frame(make([]byte, 1<<17)); err == nil {
		t.Fatal("expected error for payload exceeding uint16 length")
	}
}
