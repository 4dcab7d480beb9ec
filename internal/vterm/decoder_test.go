package vterm

import (
	"slices"
	"testing"
	"unicode/utf8"
)

func decodeAll(d *Decoder, chunks ...[]byte) []rune {
	var out []rune
	for _, c := range chunks {
		d.Decode(c, func(r rune) { out = append(out, r) })
	}
	return out
}

func TestDecoderSplitAtEveryBoundary(t *testing.T) {
	input := []byte("a€b中\U0001F600c\x1b[0m")
	var whole Decoder
	want := decodeAll(&whole, input)
	if string(want) != string(input) {
		t.Fatalf("whole decode = %q, want %q", string(want), input)
	}

	for i := 0; i <= len(input); i++ {
		var d Decoder
		got := decodeAll(&d, input[:i], input[i:])
		if !slices.Equal(got, want) {
			t.Fatalf("split at %d: got %q, want %q", i, string(got), string(want))
		}
	}
}

func TestDecoderByteAtATime(t *testing.T) {
	input := []byte("héllo wörld ✓")
	var d Decoder
	var got []rune
	for _, b := range input {
		d.Decode([]byte{b}, func(r rune) { got = append(got, r) })
	}
	if string(got) != string(input) {
		t.Fatalf("got %q, want %q", string(got), input)
	}
	if d.Pending() != 0 {
		t.Fatalf("expected no pending bytes, got %d", d.Pending())
	}
}

func TestDecoderInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []rune
	}{
		{"lone continuation", []byte{0x80, 'a'}, []rune{utf8.RuneError, 'a'}},
		{"truncated then ascii", []byte{0xe2, 0x82, 'x'}, []rune{utf8.RuneError, utf8.RuneError, 'x'}},
		{"bad lead", []byte{0xff, 'b'}, []rune{utf8.RuneError, 'b'}},
		{"truncated then escape", []byte{0xc3, 0x1b}, []rune{utf8.RuneError, 0x1b}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Decoder
			got := decodeAll(&d, tt.in)
			if !slices.Equal(got, tt.want) {
				t.Fatalf("got %U, want %U", got, tt.want)
			}
		})
	}
}

func TestDecoderPendingAcrossCalls(t *testing.T) {
	var d Decoder
	got := decodeAll(&d, []byte{0xe4, 0xb8})
	if len(got) != 0 {
		t.Fatalf("expected nothing emitted for a partial rune, got %q", string(got))
	}
	if d.Pending() != 2 {
		t.Fatalf("Pending() = %d, want 2", d.Pending())
	}
	got = decodeAll(&d, []byte{0xad})
	if string(got) != "中" {
		t.Fatalf("got %q, want 中", string(got))
	}
}

func TestDecoderLegacyMode(t *testing.T) {
	var d Decoder
	d.SetLegacy(true)
	got := decodeAll(&d, []byte{'a', 0xe9, 0x9b, 0xff})
	want := []rune{'a', 'é', 0x9b, 'ÿ'}
	if !slices.Equal(got, want) {
		t.Fatalf("got %U, want %U", got, want)
	}
	d.SetLegacy(false)
	got = decodeAll(&d, []byte("é"))
	if string(got) != "é" {
		t.Fatalf("after leaving legacy mode got %q", string(got))
	}
}
