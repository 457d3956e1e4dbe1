package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want float64
	}{
		{name: "empty", in: nil, want: 0},
		{name: "single", in: []float64{4}, want: 4},
		{name: "several", in: []float64{1, 2, 3, 4}, want: 2.5},
		{name: "negative", in: []float64{-2, 2, -4}, want: -4.0 / 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Mean(tt.in), 1e-12)
		})
	}
}
