package object

import (
	"errors"
	"strings"
	"testing"
)

func TestSumDeterminism(t *testing.T) {
	data := []byte("hello world")
	id1 := Sum(data)
	id2 := Sum(data)
	if id1 != id2 {
		t.Errorf("Sum not deterministic: %q != %q", id1, id2)
	}
	if len(id1) != HexLength {
		t.Errorf("ID length: got %d, want %d", len(id1), HexLength)
	}
}

func TestSumKnownVector(t *testing.T) {
	// SHA-256 of the empty input.
	want := ID("e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855")
	if got := Sum(nil); got != want {
		t.Errorf("Sum(nil): got %q, want %q", got, want)
	}
}

func TestSumIsLowerHex(t *testing.T) {
	id := Sum([]byte("test"))
	for _, c := range string(id) {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			t.Errorf("ID contains non-lowercase-hex character: %c", c)
		}
	}
}

func TestParseValid(t *testing.T) {
	raw := string(Sum([]byte("payload")))
	id, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if string(id) != raw {
		t.Errorf("Parse changed id: got %q, want %q", id, raw)
	}
}

func TestParseNormalizesCase(t *testing.T) {
	lower := string(Sum([]byte("payload")))
	id, err := Parse(strings.ToUpper(lower))
	if err != nil {
		t.Fatalf("Parse upper: %v", err)
	}
	if string(id) != lower {
		t.Errorf("Parse did not normalize case: got %q, want %q", id, lower)
	}
}

func TestParseInvalid(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"short", "abc123"},
		{"long", strings.Repeat("a", HexLength+2)},
		{"nonhex", strings.Repeat("z", HexLength)},
		{"spaced", " " + strings.Repeat("a", HexLength-1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.in)
			if err == nil {
				t.Fatalf("Parse(%q): expected error", tc.in)
			}
			if !errors.Is(err, ErrInvalidID) {
				t.Errorf("Parse(%q): error %v does not wrap ErrInvalidID", tc.in, err)
			}
		})
	}
}

func TestShort(t *testing.T) {
	id := Sum([]byte("abbreviate"))
	short := id.Short()
	if len(short) != 12 {
		t.Errorf("Short length: got %d, want 12", len(short))
	}
	if !strings.HasPrefix(string(id), short) {
		t.Errorf("Short %q is not a prefix of %q", short, id)
	}
}
