// euclid.go - Euclidean rhythm generation (Bjorklund's algorithm)
/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package pattern

// Bjorklund distributes k hits as evenly as possible over n steps,
// returning a boolean slice of length n. Implements the standard
// "Euclidean rhythm" bucket algorithm (Toussaint's description of
// Bjorklund's).
func Bjorklund(k, n int) []bool {
	if n <= 0 {
		return nil
	}
	if k <= 0 {
		return make([]bool, n)
	}
	if k >= n {
		out := make([]bool, n)
		for i := range out {
			out[i] = true
		}
		return out
	}

	// Two groups: k groups of [true] and (n-k) groups of [false],
	// repeatedly interleaved until at most one group of the smaller kind
	// remains appended to the larger.
	a := make([][]bool, k)
	for i := range a {
		a[i] = []bool{true}
	}
	b := make([][]bool, n-k)
	for i := range b {
		b[i] = []bool{false}
	}

	for len(b) > 1 {
		m := len(a)
		if len(b) < m {
			m = len(b)
		}
		newA := make([][]bool, 0, m)
		for i := 0; i < m; i++ {
			newA = append(newA, append(append([]bool{}, a[i]...), b[i]...))
		}
		var newB [][]bool
		if len(a) > m {
			newB = append(newB, a[m:]...)
		} else if len(b) > m {
			newB = append(newB, b[m:]...)
		}
		a, b = newA, newB
	}

	out := make([]bool, 0, n)
	for _, g := range a {
		out = append(out, g...)
	}
	for _, g := range b {
		out = append(out, g...)
	}
	return out
}

// Euclid replaces each hap of p's underlying pulse with a k-hits-in-n
// sequence rotated by r, gaps becoming rests: hits keep p's own hap
// value, rests are Silence slots, laid out with FastCat/TimeCat so they
// occupy even 1/n slices of the cycle.
func Euclid[T any](p Pattern[T], k, n, r int) Pattern[T] {
	if n <= 0 {
		return Silence[T]()
	}
	hits := Bjorklund(k, n)
	if r != 0 {
		r = ((r % n) + n) % n
		hits = append(append([]bool{}, hits[r:]...), hits[:r]...)
	}
	parts := make([]Pattern[T], n)
	for i, hit := range hits {
		if hit {
			parts[i] = p
		} else {
			parts[i] = Silence[T]()
		}
	}
	return FastCat(parts...)
}
