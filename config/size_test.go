package config

import "testing"

func TestParseSize(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"64KB", 64 * 1024},
		{"4MB", 4 * 1024 * 1024},
		{"1GB", 1024 * 1024 * 1024},
		{"1024", 1024},
		{"512B", 512},
		{"  8kb  ", 8 * 1024},
		{"16 KB", 16 * 1024},
		{"", -1},
		{"lots", -1},
		{"12XB", -1},
		{"-4KB", -1},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := ParseSize(tc.input, -1); got != tc.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}
