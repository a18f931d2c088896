package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tokenpulse/engine/internal/types"
)

func TestDriftNoTarget(t *testing.T) {
	current := types.Allocation{"0xa": 0.6, "0xb": 0.4}
	assert.Zero(t, Drift(current, nil))
	assert.Zero(t, Drift(current, types.Allocation{}))
}

func TestDriftAlignedAllocations(t *testing.T) {
	allocation := types.Allocation{"0xa": 0.5, "0xb": 0.5}
	assert.InDelta(t, 0.0, Drift(allocation, allocation), 1e-9)
}

func TestDriftPartialShift(t *testing.T) {
	current := types.Allocation{"0xa": 0.9, "0xb": 0.1}
	target := types.Allocation{"0xa": 0.5, "0xb": 0.5}
	// |0.9-0.5| + |0.1-0.5| = 0.8, halved.
	assert.InDelta(t, 0.4, Drift(current, target), 1e-9)
}

func TestDriftTotalReallocation(t *testing.T) {
	current := types.Allocation{"0xa": 1.0}
	target := types.Allocation{"0xb": 1.0}
	assert.InDelta(t, 1.0, Drift(current, target), 1e-9)
}

func TestDriftSymmetric(t *testing.T) {
	a := types.Allocation{"0xa": 0.7, "0xb": 0.3}
	b := types.Allocation{"0xa": 0.2, "0xb": 0.5, "0xc": 0.3}
	assert.InDelta(t, Drift(a, b), Drift(b, a), 1e-9)
}

func TestComputeConcentration(t *testing.T) {
	allocation := types.Allocation{"0xa": 0.6, "0xb": 0.3, "0xc": 0.1}
	concentration := ComputeConcentration(allocation)

	assert.Equal(t, "0xa", concentration.MaxToken)
	assert.InDelta(t, 0.6, concentration.MaxWeight, 1e-9)
	assert.InDelta(t, 0.36+0.09+0.01, concentration.Herfindahl, 1e-9)
	assert.Equal(t, 3, concentration.Tokens)
}

func TestComputeConcentrationEmpty(t *testing.T) {
	concentration := ComputeConcentration(nil)
	assert.Zero(t, concentration.MaxWeight)
	assert.Empty(t, concentration.MaxToken)
	assert.Zero(t, concentration.Herfindahl)
	assert.Zero(t, concentration.Tokens)
}

func TestComputeConcentrationTieBreaksDeterministically(t *testing.T) {
	allocation := types.Allocation{"0xbbb": 0.5, "0xaaa": 0.5}
	assert.Equal(t, "0xaaa", ComputeConcentration(allocation).MaxToken)
}
