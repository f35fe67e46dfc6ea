package diag

import "testing"

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{name: "identical", a: "count", b: "count", want: 0},
		{name: "empty to word", a: "", b: "abc", want: 3},
		{name: "word to empty", a: "abc", b: "", want: 3},
		{name: "single deletion", a: "food", b: "foo", want: 1},
		{name: "single substitution", a: "cat", b: "cut", want: 1},
		{name: "transposition costs two", a: "ab", b: "ba", want: 2},
		{name: "kitten sitting", a: "kitten", b: "sitting", want: 3},
		{name: "runes not bytes", a: "héllo", b: "hello", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); got != tt.want {
				t.Errorf("Distance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			// Distance is symmetric.
			if got := Distance(tt.b, tt.a); got != tt.want {
				t.Errorf("Distance(%q, %q) = %d, want %d", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestNearest(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		candidates []string
		want       string
		wantOK     bool
	}{
		{
			name:       "closest wins",
			target:     "foo",
			candidates: []string{"food", "level", "count"},
			want:       "food",
			wantOK:     true,
		},
		{
			name:       "tie goes to earliest",
			target:     "fx",
			candidates: []string{"fa", "fb"},
			want:       "fa",
			wantOK:     true,
		},
		{
			name:       "exact match",
			target:     "count",
			candidates: []string{"amount", "count"},
			want:       "count",
			wantOK:     true,
		},
		{
			name:       "empty candidates",
			target:     "foo",
			candidates: nil,
			wantOK:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Nearest(tt.target, tt.candidates)
			if ok != tt.wantOK {
				t.Fatalf("Nearest(%q) ok = %v, want %v", tt.target, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Nearest(%q) = %q, want %q", tt.target, got, tt.want)
			}
		})
	}
}
