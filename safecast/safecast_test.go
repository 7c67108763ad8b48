package safecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		def  int
		want int
	}{
		{"int passthrough", 42, 0, 42},
		{"numeric string", "17", 0, 17},
		{"float truncates", 3.9, 0, 3},
		{"garbage string", "abc", 7, 7},
		{"nil uses default", nil, 5, 5},
		{"bool true", true, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Int(tt.in, tt.def))
		})
	}
}

func TestBool(t *testing.T) {
	tests := []struct {
		name string
		in   any
		def  bool
		want bool
	}{
		{"bool passthrough", true, false, true},
		{"yes", "yes", false, true},
		{"y", "y", false, true},
		{"t uppercase", "T", false, true},
		{"one", "1", false, true},
		{"no", "no", true, false},
		{"n", "n", true, false},
		{"zero string", "0", true, false},
		{"padded", "  YES  ", false, true},
		{"unknown string uses default", "maybe", true, true},
		{"nil uses default", nil, true, true},
		{"int one", 1, false, true},
		{"int zero", 0, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Bool(tt.in, tt.def))
		})
	}
}

func TestStringAndFloat(t *testing.T) {
	assert.Equal(t, "123", String(123, ""))
	assert.Equal(t, "fallback", String(nil, "fallback"))
	assert.Equal(t, 2.5, Float64("2.5", 0))
	assert.Equal(t, 1.5, Float64(struct{}{}, 1.5))
	assert.Equal(t, int64(900), Int64("900", 0))
}
