package slices

func Contains[L ~[]E, E comparable](l L, x E) bool {
	for _, y := range l {
		if x == y {
			return true
		}
	}

	return false
}

func Subset[L ~[]E, E comparable](a, b L) bool {
	if len(a) > len(b) {
		return false
	}

	for _, x := range a {
		if !Contains(b, x) {
			return false
		}
	}

	return true
}

func Map[L ~[]X, X, Y any](l L, f func(X) Y) []Y {
	r := make([]Y, len(l))
	for i, x := range l {
		r[i] = f(x)
	}
	return r
}
