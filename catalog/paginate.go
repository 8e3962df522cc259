package catalog

// TotalPages returns how many pages n items occupy at the given page size.
// Zero items is zero pages.
func TotalPages(n, pageSize int) int {
	if n <= 0 {
		return 0
	}
	return (n + pageSize - 1) / pageSize
}

// pageBounds returns the half-open index range [lo, hi) of the 1-based page
// within n items. Out-of-range pages clamp to an empty range rather than
// erroring.
func pageBounds(n, page, pageSize int) (lo, hi int) {
	lo = (page - 1) * pageSize
	hi = lo + pageSize
	if lo < 0 || lo > n {
		return n, n
	}
	if hi > n {
		hi = n
	}
	return lo, hi
}

// Window returns the inclusive range of page numbers to offer as links
// around the current page: [max(1, page-2), min(totalPages, page+2)].
// When totalPages is zero the range is empty (First > Last).
func Window(page, totalPages int) (first, last int) {
	first = page - 2
	if first < 1 {
		first = 1
	}
	last = page + 2
	if last > totalPages {
		last = totalPages
	}
	return first, last
}

// Pages expands a window into the list of page numbers, for rendering.
func Pages(first, last int) []int {
	var result []int
	for p := first; p <= last; p++ {
		result = append(result, p)
	}
	return result
}
