package iso8583

import (
	"fmt"
	"strconv"

	"npsb-switch/internal/bcd"
	"npsb-switch/internal/catalog"
)

// encodeField renders one field's value to wire bytes according to its
// catalog definition and the active encoder mode.
func encodeField(def catalog.Definition, value any, mode Mode) ([]byte, error) {
	switch def.Format {
	case catalog.Fixed:
		return encodeFixed(def, value, mode)
	case catalog.LLVAR, catalog.LLLVAR:
		return encodeVariable(def, value, mode)
	default:
		return nil, fmt.Errorf("field %d: unknown format %v", def.Number, def.Format)
	}
}

// decodeField reads one field's value from buf starting at offset 0,
// returning the value and the number of bytes consumed.
func decodeField(def catalog.Definition, buf []byte, mode Mode) (any, int, error) {
	switch def.Format {
	case catalog.Fixed:
		return decodeFixed(def, buf, mode)
	case catalog.LLVAR, catalog.LLLVAR:
		return decodeVariable(def, buf, mode)
	default:
		return nil, 0, fmt.Errorf("field %d: unknown format %v", def.Number, def.Format)
	}
}

func encodeFixed(def catalog.Definition, value any, mode Mode) ([]byte, error) {
	switch def.Class {
	case catalog.RawBinary:
		b, ok := value.([]byte)
		if !ok {
			return nil, fmt.Errorf("field %d: binary field requires []byte value", def.Number)
		}
		if len(b) != def.MaxLength {
			return nil, fmt.Errorf("%w: field %d wants %d bytes, got %d", ErrLengthMismatch, def.Number, def.MaxLength, len(b))
		}
		return b, nil

	case catalog.Numeric:
		digits, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("field %d: numeric field requires string value", def.Number)
		}
		if err := validateDigits(digits); err != nil {
			return nil, &FieldError{Field: def.Number, Err: err}
		}
		padded := leftPadOrTruncate(digits, def.MaxLength, '0')
		if mode.bodyEncoding(def) == catalog.BCD {
			return bcd.Encode(padded)
		}
		return []byte(padded), nil

	case catalog.Alphanumeric, catalog.AlphaNumSym:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("field %d: text field requires string value", def.Number)
		}
		return []byte(rightPadOrTruncate(s, def.MaxLength, ' ')), nil

	default:
		return nil, fmt.Errorf("field %d: unhandled data class", def.Number)
	}
}

func decodeFixed(def catalog.Definition, buf []byte, mode Mode) (any, int, error) {
	switch def.Class {
	case catalog.RawBinary:
		if len(buf) < def.MaxLength {
			return nil, 0, fmt.Errorf("%w: field %d", ErrTruncated, def.Number)
		}
		out := make([]byte, def.MaxLength)
		copy(out, buf[:def.MaxLength])
		return out, def.MaxLength, nil

	case catalog.Numeric:
		if mode.bodyEncoding(def) == catalog.BCD {
			n := bcd.ByteLen(def.MaxLength)
			if len(buf) < n {
				return nil, 0, fmt.Errorf("%w: field %d", ErrTruncated, def.Number)
			}
			digits, err := bcd.Decode(buf[:n], def.MaxLength)
			if err != nil {
				return nil, 0, &FieldError{Field: def.Number, Err: err}
			}
			return digits, n, nil
		}
		if len(buf) < def.MaxLength {
			return nil, 0, fmt.Errorf("%w: field %d", ErrTruncated, def.Number)
		}
		digits := string(buf[:def.MaxLength])
		if err := validateDigits(digits); err != nil {
			return nil, 0, &FieldError{Field: def.Number, Err: err}
		}
		return digits, def.MaxLength, nil

	case catalog.Alphanumeric, catalog.AlphaNumSym:
		if len(buf) < def.MaxLength {
			return nil, 0, fmt.Errorf("%w: field %d", ErrTruncated, def.Number)
		}
		return string(buf[:def.MaxLength]), def.MaxLength, nil

	default:
		return nil, 0, fmt.Errorf("field %d: unhandled data class", def.Number)
	}
}

func encodeVariable(def catalog.Definition, value any, mode Mode) ([]byte, error) {
	var (
		body   []byte
		length int
		err    error
	)

	switch def.Class {
	case catalog.RawBinary:
		b, ok := value.([]byte)
		if !ok {
			return nil, fmt.Errorf("field %d: binary field requires []byte value", def.Number)
		}
		length = len(b)
		body = b
	case catalog.Numeric:
		digits, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("field %d: numeric field requires string value", def.Number)
		}
		if err := validateDigits(digits); err != nil {
			return nil, &FieldError{Field: def.Number, Err: err}
		}
		length = len(digits)
		if mode.bodyEncoding(def) == catalog.BCD {
			if body, err = bcd.Encode(digits); err != nil {
				return nil, &FieldError{Field: def.Number, Err: err}
			}
		} else {
			body = []byte(digits)
		}
	default: // Alphanumeric, AlphaNumSym
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("field %d: text field requires string value", def.Number)
		}
		length = len(s)
		body = []byte(s)
	}

	if length > def.MaxLength {
		return nil, &FieldError{Field: def.Number, Err: fmt.Errorf("%w: length %d > max %d", ErrLengthOverflow, length, def.MaxLength)}
	}

	prefixDigits := 2
	if def.Format == catalog.LLLVAR {
		prefixDigits = 3
	}

	prefix, err := encodeLengthPrefix(length, prefixDigits, mode.LengthEncoding)
	if err != nil {
		return nil, &FieldError{Field: def.Number, Err: err}
	}

	out := make([]byte, 0, len(prefix)+len(body))
	out = append(out, prefix...)
	out = append(out, body...)
	return out, nil
}

func decodeVariable(def catalog.Definition, buf []byte, mode Mode) (any, int, error) {
	prefixDigits := 2
	if def.Format == catalog.LLLVAR {
		prefixDigits = 3
	}

	length, prefixLen, err := decodeLengthPrefix(buf, prefixDigits, mode.LengthEncoding)
	if err != nil {
		return nil, 0, &FieldError{Field: def.Number, Err: err}
	}
	if length > def.MaxLength {
		return nil, 0, &FieldError{Field: def.Number, Err: fmt.Errorf("%w: length %d > max %d", ErrLengthOverflow, length, def.MaxLength)}
	}

	// The prefix counts digits for N fields; a BCD body packs two per byte.
	bodyLen := length
	if def.Class == catalog.Numeric && mode.bodyEncoding(def) == catalog.BCD {
		bodyLen = bcd.ByteLen(length)
	}

	rest := buf[prefixLen:]
	if len(rest) < bodyLen {
		return nil, 0, fmt.Errorf("%w: field %d", ErrTruncated, def.Number)
	}
	body := rest[:bodyLen]
	consumed := prefixLen + bodyLen

	switch def.Class {
	case catalog.RawBinary:
		out := make([]byte, length)
		copy(out, body)
		return out, consumed, nil
	case catalog.Numeric:
		if mode.bodyEncoding(def) == catalog.BCD {
			digits, err := bcd.Decode(body, length)
			if err != nil {
				return nil, 0, &FieldError{Field: def.Number, Err: err}
			}
			return digits, consumed, nil
		}
		digits := string(body)
		if err := validateDigits(digits); err != nil {
			return nil, 0, &FieldError{Field: def.Number, Err: err}
		}
		return digits, consumed, nil
	default:
		return string(body), consumed, nil
	}
}

// encodeLengthPrefix renders a natural length as an LLVAR/LLLVAR prefix.
func encodeLengthPrefix(length, digits int, enc catalog.Encoding) ([]byte, error) {
	max := 1
	for i := 0; i < digits; i++ {
		max *= 10
	}
	if length >= max {
		return nil, fmt.Errorf("%w: length %d does not fit in %d-digit prefix", ErrLengthOverflow, length, digits)
	}

	s := fmt.Sprintf("%0*d", digits, length)
	if enc == catalog.ASCII {
		return []byte(s), nil
	}
	return bcd.Encode(s)
}

// decodeLengthPrefix reads an LLVAR/LLLVAR length prefix, returning the
// decoded natural length and the number of bytes the prefix occupied.
func decodeLengthPrefix(buf []byte, digits int, enc catalog.Encoding) (int, int, error) {
	if enc == catalog.ASCII {
		if len(buf) < digits {
			return 0, 0, ErrTruncated
		}
		s := string(buf[:digits])
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %v", ErrBadLengthPrefix, err)
		}
		return n, digits, nil
	}

	// BCD: 1 byte for a 2-digit prefix, 2 bytes for a 3-digit prefix
	// (with a leading zero nibble padding the odd digit count).
	byteLen := bcd.ByteLen(digits)
	if len(buf) < byteLen {
		return 0, 0, ErrTruncated
	}
	s, err := bcd.Decode(buf[:byteLen], digits)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrBadLengthPrefix, err)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrBadLengthPrefix, err)
	}
	return n, byteLen, nil
}

func validateDigits(s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return fmt.Errorf("%w: %q", ErrNonNumeric, s)
		}
	}
	return nil
}

func leftPadOrTruncate(s string, width int, pad byte) string {
	if len(s) == width {
		return s
	}
	if len(s) > width {
		// Keep the low-order (rightmost) characters.
		return s[len(s)-width:]
	}
	buf := make([]byte, width)
	padLen := width - len(s)
	for i := 0; i < padLen; i++ {
		buf[i] = pad
	}
	copy(buf[padLen:], s)
	return string(buf)
}

func rightPadOrTruncate(s string, width int, pad byte) string {
	if len(s) == width {
		return s
	}
	if len(s) > width {
		return s[:width]
	}
	buf := make([]byte, width)
	copy(buf, s)
	for i := len(s); i < width; i++ {
		buf[i] = pad
	}
	return string(buf)
}
