package sample

// EMA is an exponential moving average:
//
//	value = value*(1-alpha) + x*alpha
//
// It is not safe for concurrent use.
type EMA struct {
	alpha float32
	value float32
}

// NewEMA creates an average seeded with an initial value. Alpha outside (0, 1]
// is clamped into range.
func NewEMA(alpha, seed float32) *EMA {
	if alpha <= 0 {
		alpha = 1e-3
	}
	if alpha > 1 {
		alpha = 1
	}
	return &EMA{alpha: alpha, value: seed}
}

// Update folds x into the average and returns the new value.
func (e *EMA) Update(x float32) float32 {
	e.value = e.value*(1-e.alpha) + x*e.alpha
	return e.value
}

// Value returns the current average.
func (e *EMA) Value() float32 {
	return e.value
}
