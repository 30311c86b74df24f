package provider

import "math"

// Delta tracks a monotonically increasing counter and its change over the
// last cycle.
type Delta struct {
	Value uint64 `json:"value"`
	Delta uint64 `json:"delta"`
}

// NewDelta starts a counter at value with a zero delta.
func NewDelta(value uint64) Delta {
	return Delta{Value: value}
}

// Update records a new sample. A sample lower than the previous one is
// treated as a counter reset and yields a zero delta.
func (d *Delta) Update(value uint64) {
	if value >= d.Value {
		d.Delta = value - d.Value
	} else {
		d.Delta = 0
	}
	d.Value = value
}

// Usage returns delta as a fraction of total. A zero total is treated as the
// largest representable value so the result is zero instead of undefined.
func Usage(delta, total uint64) float64 {
	if total == 0 {
		total = math.MaxUint64
	}
	return float64(delta) / float64(total)
}
