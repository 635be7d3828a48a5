package renderer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLongestIncreasingSubsequence(t *testing.T) {
	tests := []struct {
		name string
		in   []int
		want []int
	}{
		{"empty", nil, []int{}},
		{"sorted", []int{0, 1, 2}, []int{0, 1, 2}},
		{"rotate right", []int{2, 0, 1}, []int{1, 2}},
		{"reversed", []int{3, 2, 1, 0}, []int{3}},
		{"classic", []int{2, 1, 5, 3, 6, 4, 8, 9, 7}, []int{1, 3, 5, 6, 7}},
		{"skips unmatched", []int{unmatched, 0, unmatched, 1}, []int{1, 3}},
		{"all unmatched", []int{unmatched, unmatched}, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := longestIncreasingSubsequence(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("longestIncreasingSubsequence(%v) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestToHandlerKey(t *testing.T) {
	tests := map[string]string{
		"add":            "onAdd",
		"add-foo":        "onAddFoo",
		"update-one-two": "onUpdateOneTwo",
		"click":          "onClick",
	}
	for in, want := range tests {
		if got := toHandlerKey(in); got != want {
			t.Errorf("toHandlerKey(%q) = %q, want %q", in, got, want)
		}
	}
}
