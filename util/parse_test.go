package util

import "testing"

func TestParseSize(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"10MB", 10 * 1024 * 1024},
		{"512KB", 512 * 1024},
		{"1GB", 1024 * 1024 * 1024},
		{"2048", 2048},
		{" 5mb ", 5 * 1024 * 1024},
	}
	for _, c := range cases {
		if got := ParseSize(c.in, 99); got != c.want {
			t.Errorf("ParseSize(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseSizeDefault(t *testing.T) {
	if got := ParseSize("", 42); got != 42 {
		t.Errorf("expected default 42, got %d", got)
	}
	if got := ParseSize("banana", 42); got != 42 {
		t.Errorf("expected default 42 for garbage input, got %d", got)
	}
}
