// Package bcd packs and unpacks packed-decimal (BCD) digit strings.
//
// Two decimal digits are packed per byte, high nibble first. Odd-length
// values are left-padded with a '0' digit before packing, and the
// corresponding leading nibble is discarded (not trimmed from the tail)
// when unpacking back to a known digit count, matching how older NPSB
// switches emit a leading zero nibble rather than a trailing one.
package bcd

import "fmt"

// Encode packs a decimal digit string into BCD bytes. An odd-length
// input is left-padded with '0' before packing.
func Encode(digits string) ([]byte, error) {
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return nil, fmt.Errorf("bcd: non-digit character %q at position %d", digits[i], i)
		}
	}

	if len(digits)%2 != 0 {
		digits = "0" + digits
	}

	out := make([]byte, len(digits)/2)
	for i := 0; i < len(out); i++ {
		hi := digits[i*2] - '0'
		lo := digits[i*2+1] - '0'
		out[i] = hi<<4 | lo
	}
	return out, nil
}

// Decode expands BCD bytes into a decimal digit string right-trimmed to
// expectedDigits (so a leading zero nibble from odd-length padding is
// discarded along with it). A nibble of 0xF is treated as padding only
// at the one position where an odd-length field's pad nibble can
// legitimately sit: the leading (high) nibble of the first byte, and
// only when expectedDigits is odd. A 0xF anywhere else, or an even-length
// field with a leading 0xF, is an error, as is any nibble in 10..14.
func Decode(b []byte, expectedDigits int) (string, error) {
	oddLength := expectedDigits%2 != 0

	digits := make([]byte, 0, len(b)*2)
	nibble := func(n byte, byteIdx int, high bool) error {
		isPadPosition := byteIdx == 0 && high && oddLength
		if n == 0x0F {
			if isPadPosition {
				return nil
			}
			return fmt.Errorf("bcd: unexpected pad nibble at byte %d", byteIdx)
		}
		if n > 9 {
			which := "low"
			if high {
				which = "high"
			}
			return fmt.Errorf("bcd: invalid %s nibble %x at byte %d", which, n, byteIdx)
		}
		digits = append(digits, '0'+n)
		return nil
	}

	for i, by := range b {
		if err := nibble(by>>4, i, true); err != nil {
			return "", err
		}
		if err := nibble(by&0x0F, i, false); err != nil {
			return "", err
		}
	}

	if expectedDigits < 0 || expectedDigits > len(digits) {
		return "", fmt.Errorf("bcd: expected %d digits, decoded %d", expectedDigits, len(digits))
	}
	return string(digits[len(digits)-expectedDigits:]), nil
}

// ByteLen returns how many bytes a digit count of the given length packs
// to, i.e. ceil(n/2).
func ByteLen(digitCount int) int {
	return (digitCount + 1) / 2
}
