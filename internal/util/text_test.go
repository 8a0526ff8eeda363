package util

import "testing"

func TestTruncateChars(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{
			name: "shorter than limit",
			in:   "hello",
			max:  10,
			want: "hello",
		},
		{
			name: "exact limit",
			in:   "hello",
			max:  5,
			want: "hello",
		},
		{
			name: "hard cut mid sentence",
			in:   "hello world",
			max:  8,
			want: "hello wo",
		},
		{
			name: "zero limit",
			in:   "hello",
			max:  0,
			want: "",
		},
		{
			name: "multibyte runes not split",
			in:   "größer",
			max:  3,
			want: "grö",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateChars(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("TruncateChars(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}
