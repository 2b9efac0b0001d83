package schemaver

// filterExcept returns a new slice containing all versions
// which exist in the first but not the second slice.
func filterExcept(items []int64, except []int64) []int64 {
	skip := make(map[int64]struct{}, len(except))
	for _, ex := range except {
		skip[ex] = struct{}{}
	}
	return filter(items, func(v int64) bool {
		_, found := skip[v]
		return !found
	})
}

// filter returns a new slice containing all versions in the slice that satisfy the predicate f.
func filter(items []int64, f func(int64) bool) []int64 {
	filtered := []int64{}
	for _, v := range items {
		if f(v) {
			filtered = append(filtered, v)
		}
	}
	return filtered
}
