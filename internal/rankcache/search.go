package rankcache

// searchFirst returns the smallest index i in (lo, hi] with ok(i) true.
// ok must be monotone (false...true) over the range and ok(hi) must hold.
func searchFirst(lo, hi int, ok func(int) bool) int {
	for hi-lo > 1 {
		mid := int(uint(lo+hi) >> 1)
		if ok(mid) {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi
}

// searchLast returns the largest index i in [lo, hi) with ok(i) true.
// ok must be monotone (true...false) over the range and ok(lo) must hold.
func searchLast(lo, hi int, ok func(int) bool) int {
	for hi-lo > 1 {
		mid := int(uint(lo+hi) >> 1)
		if ok(mid) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}
