package service

import (
	"reflect"
	"testing"
)

func TestNormalizeSkills(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "trims whitespace",
			in:   []string{"  plumbing ", "electrical"},
			want: []string{"plumbing", "electrical"},
		},
		{
			name: "drops empty entries",
			in:   []string{"", "   ", "roofing"},
			want: []string{"roofing"},
		},
		{
			name: "deduplicates case-insensitively keeping first",
			in:   []string{"Painting", "painting", "PAINTING"},
			want: []string{"Painting"},
		},
		{
			name: "nil input",
			in:   nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeSkills(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("normalizeSkills(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
