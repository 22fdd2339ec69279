package sample

// Downsample decimates src to at most maxPoints evenly spaced elements.
// dst is reused when it has enough capacity, otherwise a new slice is
// allocated. The first element is always kept.
func Downsample[T any](dst, src []T, maxPoints int) []T {
	if maxPoints <= 0 {
		return dst[:0]
	}
	if len(src) <= maxPoints {
		if cap(dst) < len(src) {
			dst = make([]T, len(src))
		}
		dst = dst[:len(src)]
		copy(dst, src)
		return dst
	}

	if cap(dst) >= maxPoints {
		dst = dst[:0]
	} else {
		dst = make([]T, 0, maxPoints)
	}

	step := float64(len(src)) / float64(maxPoints)
	for i := range maxPoints {
		idx := int(float64(i) * step)
		if idx < len(src) {
			dst = append(dst, src[idx])
		}
	}

	return dst
}
