package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		approved  int
		eligible  int
		threshold float64
		want      Status
	}{
		{"no votes yet", 0, 3, 0.5, StatusPending},
		{"below threshold", 1, 3, 0.5, StatusPending},
		{"meets threshold", 2, 3, 0.5, StatusFinalized},
		{"exact threshold", 2, 4, 0.5, StatusFinalized},
		{"all approved", 3, 3, 0.5, StatusFinalized},
		{"unanimous threshold not met", 2, 3, 1.0, StatusPending},
		{"unanimous threshold met", 3, 3, 1.0, StatusFinalized},
		{"single eligible voter", 1, 1, 0.5, StatusFinalized},
		{"zero eligible voters never finalizes", 0, 0, 0.5, StatusPending},
		{"zero eligible with low threshold", 0, 0, 0.01, StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.approved, tt.eligible, tt.threshold))
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusFinalized.Terminal())
	assert.True(t, StatusDisputed.Terminal())
}
