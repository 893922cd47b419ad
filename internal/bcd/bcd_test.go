package bcd

import (
	"bytes"
	"testing"
)

func TestEncodeEvenLength(t *testing.T) {
	b, err := Encode("1234")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(b, []byte{0x12, 0x34}) {
		t.Fatalf("got % x", b)
	}
}

func TestEncodeOddLengthPadsLeft(t *testing.T) {
	b, err := Encode("123")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(b, []byte{0x01, 0x23}) {
		t.Fatalf("got % x, want 01 23", b)
	}
}

func TestEncodeNonDigit(t *testing.T) {
	if _, err := Encode("12a4"); err == nil {
		t.Fatal("expected error for non-digit input")
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	for _, v := range []string{"0", "9", "12", "123", "000015600000", "094906"} {
		enc, err := Encode(v)
		if err != nil {
			t.Fatalf("Encode(%q): %v", v, err)
		}
		dec, err := Decode(enc, len(v))
		if err != nil {
			t.Fatalf("Decode(%q): %v", v, err)
		}
		if dec != v {
			t.Fatalf("round trip %q -> % x -> %q", v, enc, dec)
		}
	}
}

func TestDecodeDiscardsLeadingPadNibble(t *testing.T) {
	// "123" encodes to 0x01 0x23; decoding back to 3 digits must
	// discard the leading zero, not a trailing one.
	dec, err := Decode([]byte{0x01, 0x23}, 3)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if dec != "123" {
		t.Fatalf("got %q, want 123", dec)
	}
}

func TestDecodeSkipsFNibblePadding(t *testing.T) {
	dec, err := Decode([]byte{0xF1, 0x23}, 3)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if dec != "123" {
		t.Fatalf("got %q, want 123", dec)
	}
}

func TestDecodeInvalidNibble(t *testing.T) {
	if _, err := Decode([]byte{0xAB}, 2); err == nil {
		t.Fatal("expected error for nibble value 10..14")
	}
}

func TestDecodeRejectsEmbeddedFNibble(t *testing.T) {
	if _, err := Decode([]byte{0x1F, 0x23}, 4); err == nil {
		t.Fatal("expected error for pad nibble outside the leading position")
	}
}

func TestDecodeRejectsLeadingFNibbleOnEvenLengthField(t *testing.T) {
	if _, err := Decode([]byte{0xF1, 0x23}, 4); err == nil {
		t.Fatal("expected error: leading pad nibble is only valid for odd-length fields")
	}
}

func TestByteLen(t *testing.T) {
	cases := map[int]int{0: 0, 1: 1, 2: 1, 3: 2, 19: 10}
	for n, want := range cases {
		if got := ByteLen(n); got != want {
			t.Fatalf("ByteLen(%d) = %d, want %d", n, got, want)
		}
	}
}
