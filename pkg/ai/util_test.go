package ai

import "testing"

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestUnmarshalFlexible(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    sample
		wantErr bool
	}{
		{
			name:  "standard json",
			input: `{"name": "alpha", "count": 2}`,
			want:  sample{Name: "alpha", Count: 2},
		},
		{
			name:  "double encoded",
			input: `"{\"name\": \"beta\", \"count\": 3}"`,
			want:  sample{Name: "beta", Count: 3},
		},
		{
			name:  "unquoted keys repaired",
			input: `{name: "gamma", count: 4}`,
			want:  sample{Name: "gamma", Count: 4},
		},
		{
			name:  "duplicate leading brace",
			input: `{{"name": "delta", "count": 5}`,
			want:  sample{Name: "delta", Count: 5},
		},
		{
			name:  "trailing comma repaired",
			input: `{"name": "epsilon", "count": 6,}`,
			want:  sample{Name: "epsilon", Count: 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got sample
			err := UnmarshalFlexible(tt.input, &got)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
