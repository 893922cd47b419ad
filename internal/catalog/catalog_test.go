package catalog

import "testing"

func TestLookupKnownField(t *testing.T) {
	def, err := Lookup(11)
	if err != nil {
		t.Fatalf("Lookup(11): %v", err)
	}
	if def.MaxLength != 6 || def.Format != Fixed || def.Encoding != BCD || def.Class != Numeric {
		t.Fatalf("unexpected definition for field 11: %+v", def)
	}
}

func TestLookupUnknownField(t *testing.T) {
	_, err := Lookup(1)
	if err == nil {
		t.Fatal("expected error looking up field 1 (bitmap continuation bit, not a catalog entry)")
	}
	if _, ok := err.(ErrUnknownField); !ok {
		t.Fatalf("expected ErrUnknownField, got %T", err)
	}

	if _, err := Lookup(200); err == nil {
		t.Fatal("expected error for out-of-range field")
	}
}

func TestVariableFieldDeclaresMaxLength(t *testing.T) {
	def, err := Lookup(2)
	if err != nil {
		t.Fatalf("Lookup(2): %v", err)
	}
	if def.Format != LLVAR || def.MaxLength != 19 {
		t.Fatalf("PAN definition mismatch: %+v", def)
	}
}

func TestExhaustiveSetCoversEnumeratedTable(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 6, 7, 10, 11, 12, 13, 18, 19, 22, 25, 32, 35, 37, 38, 39,
		41, 42, 43, 46, 47, 48, 49, 50, 51, 52, 53, 54, 70, 103, 112, 125, 128} {
		if _, err := Lookup(n); err != nil {
			t.Fatalf("field %d missing from catalog: %v", n, err)
		}
	}
}
