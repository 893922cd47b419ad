// Package catalog holds the static, closed field table that governs
// how every ISO 8583 data element on this NPSB profile is framed on
// the wire. It is the contract between acquirer and issuer endpoints;
// a field number outside this table is a hard error, not a fallback.
package catalog

import "fmt"

// Format is the length-prefixing scheme for a field.
type Format int

const (
	Fixed  Format = iota // no length prefix, exact declared length
	LLVAR                // 2-digit length prefix
	LLLVAR               // 3-digit length prefix
)

func (f Format) String() string {
	switch f {
	case Fixed:
		return "FIXED"
	case LLVAR:
		return "LLVAR"
	case LLLVAR:
		return "LLLVAR"
	default:
		return "UNKNOWN"
	}
}

// Encoding is how a field's body bytes are laid out on the wire.
type Encoding int

const (
	BCD Encoding = iota
	ASCII
	Binary
)

// DataClass governs padding direction/character and validation.
type DataClass int

const (
	Numeric       DataClass = iota // N
	Alphanumeric                   // AN
	AlphaNumSym                    // ANS
	RawBinary                      // B
)

// Definition is one immutable catalog entry.
type Definition struct {
	Number    int
	Name      string
	Format    Format
	Encoding  Encoding
	MaxLength int // digits for N, chars for AN/ANS, bytes for B
	Class     DataClass
}

// ErrUnknownField is returned by Lookup for any field number this
// profile does not enumerate.
type ErrUnknownField struct{ Field int }

func (e ErrUnknownField) Error() string {
	return fmt.Sprintf("catalog: unknown field %d", e.Field)
}

// table is the exhaustive NPSB field set from the switch's field
// catalog. Field 1 is intentionally absent: it is the secondary
// bitmap continuation bit, never a stored message field.
var table = map[int]Definition{
	2:   {2, "Primary Account Number", LLVAR, BCD, 19, Numeric},
	3:   {3, "Processing Code", Fixed, BCD, 6, Numeric},
	4:   {4, "Transaction Amount", Fixed, BCD, 12, Numeric},
	5:   {5, "Settlement Amount", Fixed, BCD, 12, Numeric},
	6:   {6, "Billing Amount", Fixed, BCD, 12, Numeric},
	7:   {7, "Transmission Date/Time", Fixed, BCD, 10, Numeric},
	10:  {10, "Conversion Rate", Fixed, BCD, 8, Numeric},
	11:  {11, "System Trace Audit Number", Fixed, BCD, 6, Numeric},
	12:  {12, "Local Transaction Time", Fixed, BCD, 6, Numeric},
	13:  {13, "Local Transaction Date", Fixed, BCD, 4, Numeric},
	18:  {18, "Merchant Type", Fixed, BCD, 4, Numeric},
	19:  {19, "Acquiring Institution Country Code", Fixed, BCD, 3, Numeric},
	22:  {22, "Point of Service Entry Mode", Fixed, BCD, 3, Numeric},
	25:  {25, "Point of Service Condition Code", Fixed, BCD, 2, Numeric},
	32:  {32, "Acquiring Institution ID", LLVAR, BCD, 11, Numeric},
	35:  {35, "Track 2 Data", LLVAR, ASCII, 37, Alphanumeric},
	37:  {37, "Retrieval Reference Number", Fixed, ASCII, 12, Alphanumeric},
	38:  {38, "Authorization ID Response", Fixed, ASCII, 6, Alphanumeric},
	39:  {39, "Response Code", Fixed, ASCII, 2, Alphanumeric},
	41:  {41, "Card Acceptor Terminal ID", Fixed, ASCII, 8, AlphaNumSym},
	42:  {42, "Card Acceptor ID Code", Fixed, ASCII, 15, AlphaNumSym},
	43:  {43, "Card Acceptor Name/Location", Fixed, ASCII, 40, AlphaNumSym},
	46:  {46, "NPSB Proprietary (46)", LLLVAR, ASCII, 999, AlphaNumSym},
	47:  {47, "NPSB Proprietary (47)", LLLVAR, ASCII, 999, AlphaNumSym},
	48:  {48, "NPSB Proprietary (48)", LLLVAR, ASCII, 999, AlphaNumSym},
	49:  {49, "Currency Code, Transaction", Fixed, BCD, 3, Numeric},
	50:  {50, "Currency Code, Settlement", Fixed, ASCII, 3, Alphanumeric},
	51:  {51, "Currency Code, Billing", Fixed, ASCII, 3, Alphanumeric},
	52:  {52, "PIN Data", Fixed, Binary, 16, RawBinary},
	53:  {53, "Security Control Information", Fixed, Binary, 16, RawBinary},
	54:  {54, "Additional Amounts", LLLVAR, ASCII, 120, AlphaNumSym},
	70:  {70, "Network Management Information Code", Fixed, BCD, 3, Numeric},
	103: {103, "Account Identification 2", LLVAR, ASCII, 104, AlphaNumSym},
	112: {112, "Additional Info", LLLVAR, ASCII, 999, Alphanumeric},
	125: {125, "NPSB Proprietary (125)", LLLVAR, ASCII, 999, AlphaNumSym},
	128: {128, "Message Authentication Code", Fixed, Binary, 16, RawBinary},
}

// Lookup returns the definition for a field number, or ErrUnknownField.
func Lookup(field int) (Definition, error) {
	def, ok := table[field]
	if !ok {
		return Definition{}, ErrUnknownField{Field: field}
	}
	return def, nil
}

// MaxFieldNumber is the highest field number this profile can carry,
// bounding the secondary bitmap.
const MaxFieldNumber = 128
