package robots

// groupBy maps every key declared by a robot to the indices of the robots
// declaring it. Index lists are ascending, so the first element is the earliest
// record in file order. A robot repeating a key is listed once for it.
func groupBy[K comparable](list []Robot, keys func(*Robot) []K) map[K][]int {
	groups := make(map[K][]int)
	for i := range list {
		for _, k := range keys(&list[i]) {
			idx := groups[k]
			if n := len(idx); n > 0 && idx[n-1] == i {
				continue
			}
			groups[k] = append(idx, i)
		}
	}
	return groups
}

// mergeSorted unions ascending index lists into one ascending list without
// duplicates.
func mergeSorted(dst []int, lists ...[]int) []int {
	for _, l := range lists {
		dst = mergeTwo(dst, l)
	}
	return dst
}

func mergeTwo(a, b []int) []int {
	if len(b) == 0 {
		return a
	}
	if len(a) == 0 {
		return append([]int(nil), b...)
	}
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// firstCommon returns the smallest index present in both ascending lists.
func firstCommon(a, b []int) (int, bool) {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			return a[i], true
		}
	}
	return 0, false
}
