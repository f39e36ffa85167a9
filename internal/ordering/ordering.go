// Package ordering computes fractional position keys for issues within a
// column. Keys are spaced so that inserting between two neighbors is a
// constant-time midpoint computation; when a gap collapses the column is
// renumbered to multiples of Spacing.
package ordering

// Spacing is the gap left between keys after a rebalance and when
// appending past the last item.
const Spacing = 1000

// KeyAt computes the position key for inserting at index i into a column
// whose existing keys (sorted ascending, excluding any item being moved)
// are given. ok is false when the neighboring gap has collapsed and the
// column must be rebalanced before the key can be computed.
func KeyAt(keys []float64, i int) (key float64, ok bool) {
	if i < 0 {
		i = 0
	}
	if i > len(keys) {
		i = len(keys)
	}

	var before, after *float64
	if i > 0 {
		before = &keys[i-1]
	}
	if i < len(keys) {
		after = &keys[i]
	}

	switch {
	case before == nil && after == nil:
		return Spacing, true
	case before == nil:
		return *after - Spacing, true
	case after == nil:
		return *before + Spacing, true
	case *after-*before > 1:
		return (*before + *after) / 2, true
	default:
		return 0, false
	}
}

// Rebalanced returns fresh keys Spacing, 2*Spacing, … for n items in their
// existing order.
func Rebalanced(n int) []float64 {
	keys := make([]float64, n)
	for i := range keys {
		keys[i] = float64(i+1) * Spacing
	}
	return keys
}
