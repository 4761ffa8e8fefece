package engine

import "testing"

func TestQtNameHashDeterministic(t *testing.T) {
	h1 := QtNameHash([]rune("hello"))
	h2 := QtNameHash([]rune("hello"))
	if h1 != h2 {
		t.Errorf("hash not deterministic: %#x != %#x", h1, h2)
	}
}

func TestQtNameHashKnownValues(t *testing.T) {
	// Hand-computed against the qt_hash fold in spec.md §4.2.
	cases := []struct {
		name string
		want uint32
	}{
		{"", 0},
		{"a", 'a'},
	}
	for _, c := range cases {
		got := QtNameHash([]rune(c.name))
		if got != c.want {
			t.Errorf("QtNameHash(%q) = %#x, want %#x", c.name, got, c.want)
		}
	}
}

func TestQtNameHashDiffersAcrossNames(t *testing.T) {
	if QtNameHash([]rune("hello")) == QtNameHash([]rune("world")) {
		t.Error("distinct names unexpectedly hashed to the same value")
	}
}
